package resolve

import (
	"sort"

	"github.com/yndnr/projconf/internal/core/domain"
	"github.com/yndnr/projconf/internal/core/merge"
)

// Library builds the isolated fragment stack of the named library: one
// fragment per eligible fragment whose libs namespace defines name. Each
// library fragment keeps its owner's source, so relative level keys inside
// it resolve exactly as they would at top level.
func Library(stack domain.Stack, name string) (domain.Stack, bool) {
	var lib domain.Stack
	for _, f := range Eligible(stack) {
		libs := f.Libs()
		v, ok := libs[name]
		if !ok {
			continue
		}
		lib = append(lib, domain.NewFragment(v, f.Source()))
	}
	return lib, lib != nil
}

// Module returns the structural merge of every eligible definition of the
// named module, or nil when no eligible fragment defines it.
func Module(stack domain.Stack, name string) map[string]any {
	var out map[string]any
	for _, f := range Eligible(stack) {
		mods := f.Modules()
		v, ok := mods[name]
		if !ok {
			continue
		}
		out = merge.Structural(out, domain.AsMap(v))
	}
	return out
}

// LibraryNames returns the sorted names of all eligible libraries.
func LibraryNames(stack domain.Stack) []string {
	return names(stack, domain.Fragment.Libs)
}

// ModuleNames returns the sorted names of all eligible modules.
func ModuleNames(stack domain.Stack) []string {
	return names(stack, domain.Fragment.Modules)
}

func names(stack domain.Stack, ns func(domain.Fragment) map[string]any) []string {
	seen := map[string]struct{}{}
	for _, f := range Eligible(stack) {
		for k := range ns(f) {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
