package confloader

import (
	"errors"

	"github.com/knadh/koanf/maps"
)

// errReadBytes is returned by the in-memory providers, which only support
// Read.
var errReadBytes = errors.New("confloader: in-memory provider has no byte form")

// mapProvider feeds a map whose keys may be dotted paths; they are
// expanded into nested maps.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errReadBytes
}

func (m mapProvider) Read() (map[string]any, error) {
	return maps.Unflatten(maps.Copy(m), "."), nil
}

// rawProvider feeds an already parsed document. Keys are kept verbatim
// even when they contain the delimiter.
type rawProvider map[string]any

func (m rawProvider) ReadBytes() ([]byte, error) {
	return nil, errReadBytes
}

func (m rawProvider) Read() (map[string]any, error) {
	if m == nil {
		return map[string]any{}, nil
	}
	return maps.Copy(m), nil
}
