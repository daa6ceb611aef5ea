// Package merge implements the two merge policies used to combine
// configuration fragments.
//
// Override replaces keys wholesale (later wins). Structural unions nested
// mappings key by key and only overrides leaf conflicts. Neither function
// mutates its inputs.
package merge

import (
	"github.com/knadh/koanf/maps"

	"github.com/yndnr/projconf/internal/core/domain"
)

// Override returns a copy of a with every key of b written over it.
func Override(a, b map[string]any) map[string]any {
	out := copyOrEmpty(a)
	for k, v := range copyOrEmpty(b) {
		out[k] = v
	}
	return out
}

// Structural returns the recursive union of a and b. Where both hold a
// mapping under the same key the mappings are merged; any other conflict is
// won by b.
func Structural(a, b map[string]any) map[string]any {
	out := copyOrEmpty(a)
	// maps.Merge(src, dst) writes src into dst and may alias src's nested
	// maps, hence the copy.
	maps.Merge(copyOrEmpty(b), out)
	return out
}

// Flat computes the merged view of a whole stack: plain keys are
// override-merged in stack order, and the levels, libs and modules
// namespaces are structurally merged and attached under their own keys
// when at least one fragment defines them.
func Flat(stack domain.Stack) map[string]any {
	out := map[string]any{}
	var levels, libs, modules map[string]any

	for _, f := range stack {
		out = Override(out, f.Plain())
		if f.HasLevels() {
			levels = Structural(levels, f.Levels())
		}
		if f.HasLibs() {
			libs = Structural(libs, f.Libs())
		}
		if f.HasModules() {
			modules = Structural(modules, f.Modules())
		}
	}

	if levels != nil {
		out[domain.KeyLevels] = levels
	}
	if libs != nil {
		out[domain.KeyLibs] = libs
	}
	if modules != nil {
		out[domain.KeyModules] = modules
	}
	return out
}

// Plain override-merges the plain keys of every fragment in the stack,
// leaving out the given keys.
func Plain(stack domain.Stack, without ...string) map[string]any {
	out := map[string]any{}
	for _, f := range stack {
		out = Override(out, f.Plain())
	}
	for _, k := range without {
		delete(out, k)
	}
	return out
}

func copyOrEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return maps.Copy(m)
}
