package domain

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/knadh/koanf/maps"
)

// Reserved fragment keys.
const (
	// KeyRoot marks the fragment that defines the project root.
	KeyRoot = "root"
	// KeyLevels holds directory-scoped overlays keyed by level identifier.
	KeyLevels = "levels"
	// KeyLibs holds nested library configurations keyed by name.
	KeyLibs = "libs"
	// KeyModules holds opaque module configurations keyed by name.
	KeyModules = "modules"
	// KeySource carries the fragment's file location when a fragment is
	// given as a plain map.
	KeySource = "__source"
)

// Fragment is one partial configuration plus the file it was read from.
//
// The raw map is split into free-form plain keys and the three reserved
// namespaces so that every key has exactly one merge policy.
type Fragment struct {
	raw     map[string]any
	plain   map[string]any
	levels  map[string]any
	libs    map[string]any
	modules map[string]any
	root    bool
	source  string
}

// NewFragment builds a fragment from raw data. When source is empty and
// data carries a string __source key, that value becomes the source.
// Data that is not a mapping yields an empty fragment.
func NewFragment(data any, source string) Fragment {
	raw := AsMap(data)
	if raw == nil {
		raw = map[string]any{}
	}

	f := Fragment{
		raw:    raw,
		plain:  make(map[string]any, len(raw)),
		source: source,
	}

	for k, v := range raw {
		switch k {
		case KeyLevels:
			f.levels = AsMap(v)
		case KeyLibs:
			f.libs = AsMap(v)
		case KeyModules:
			f.modules = AsMap(v)
		case KeySource:
			if s, ok := v.(string); ok && f.source == "" {
				f.source = s
			}
		default:
			if k == KeyRoot {
				f.root, _ = v.(bool)
			}
			f.plain[k] = v
		}
	}

	return f
}

// Raw returns a copy of the data exactly as supplied.
func (f Fragment) Raw() map[string]any {
	return clone(f.raw)
}

// Plain returns a copy of the non-namespaced keys, root included.
func (f Fragment) Plain() map[string]any {
	return clone(f.plain)
}

// Levels returns a copy of the levels namespace, or nil.
func (f Fragment) Levels() map[string]any {
	return clone(f.levels)
}

// Libs returns a copy of the libs namespace, or nil.
func (f Fragment) Libs() map[string]any {
	return clone(f.libs)
}

// Modules returns a copy of the modules namespace, or nil.
func (f Fragment) Modules() map[string]any {
	return clone(f.modules)
}

// IsRoot reports whether the fragment carries root: true.
func (f Fragment) IsRoot() bool {
	return f.root
}

// Source returns the absolute path of the file the fragment came from.
func (f Fragment) Source() string {
	return f.source
}

// Dir returns the directory of the fragment's source, or fallback when the
// fragment has no source.
func (f Fragment) Dir(fallback string) string {
	if f.source == "" {
		return fallback
	}
	return filepath.Dir(f.source)
}

// HasLevels reports whether the fragment defines a levels namespace.
func (f Fragment) HasLevels() bool { return f.levels != nil }

// HasLibs reports whether the fragment defines a libs namespace.
func (f Fragment) HasLibs() bool { return f.libs != nil }

// HasModules reports whether the fragment defines a modules namespace.
func (f Fragment) HasModules() bool { return f.modules != nil }

// String implements fmt.Stringer.
func (f Fragment) String() string {
	src := f.source
	if src == "" {
		src = "<inline>"
	}
	return fmt.Sprintf("fragment(%s, %d keys)", src, len(f.raw))
}

// Stack is an ordered list of fragments. Index order is precedence order:
// index 0 is the most general, the last index the most specific.
type Stack []Fragment

// NewStack builds a stack from raw data maps, in order.
func NewStack(data ...map[string]any) Stack {
	s := make(Stack, 0, len(data))
	for _, d := range data {
		s = append(s, NewFragment(d, ""))
	}
	return s
}

// Raw returns the raw data of every fragment, in order.
func (s Stack) Raw() []map[string]any {
	out := make([]map[string]any, 0, len(s))
	for _, f := range s {
		out = append(out, f.Raw())
	}
	return out
}

// Sources returns the distinct non-empty fragment sources, in order.
func (s Stack) Sources() []string {
	seen := make(map[string]struct{}, len(s))
	var out []string
	for _, f := range s {
		if f.source == "" {
			continue
		}
		if _, ok := seen[f.source]; ok {
			continue
		}
		seen[f.source] = struct{}{}
		out = append(out, f.source)
	}
	return out
}

// AsMap returns a deep copy of v as map[string]any, converting nested
// map[any]any values produced by decoders. Anything that is not a mapping
// yields nil.
func AsMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		out := maps.Copy(m)
		maps.IntfaceKeysToStrings(out)
		return out
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		out = maps.Copy(out)
		maps.IntfaceKeysToStrings(out)
		return out
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out
	default:
		return nil
	}
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func clone(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return maps.Copy(m)
}
