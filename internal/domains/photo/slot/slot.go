// Package slot defines the fixed, ordered set of photo slots. The registry is
// the complete addressable key space of the photo store.
package slot

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyID     = errors.New("slot id is empty")
	ErrDuplicateID = errors.New("duplicate slot id")
)

type Definition struct {
	ID           string `json:"id"`
	Caption      string `json:"caption"`
	DefaultImage string `json:"default_image,omitempty"`
}

type Registry struct {
	definitions []Definition
	index       map[string]int
}

// NewRegistry builds a registry that keeps definitions in the given order.
func NewRegistry(definitions ...Definition) (*Registry, error) {
	r := &Registry{
		definitions: make([]Definition, 0, len(definitions)),
		index:       make(map[string]int, len(definitions)),
	}

	for _, def := range definitions {
		if def.ID == "" {
			return nil, ErrEmptyID
		}

		if _, ok := r.index[def.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, def.ID)
		}

		r.index[def.ID] = len(r.definitions)
		r.definitions = append(r.definitions, def)
	}

	return r, nil
}

func MustNewRegistry(definitions ...Definition) *Registry {
	r, err := NewRegistry(definitions...)
	if err != nil {
		panic(err)
	}

	return r
}

// All returns the definitions in display order.
func (r *Registry) All() []Definition {
	out := make([]Definition, len(r.definitions))
	copy(out, r.definitions)

	return out
}

func (r *Registry) IDs() []string {
	ids := make([]string, len(r.definitions))
	for i, def := range r.definitions {
		ids[i] = def.ID
	}

	return ids
}

func (r *Registry) Lookup(id string) (Definition, bool) {
	i, ok := r.index[id]
	if !ok {
		return Definition{}, false
	}

	return r.definitions[i], true
}

func (r *Registry) Contains(id string) bool {
	_, ok := r.index[id]

	return ok
}

func (r *Registry) Len() int {
	return len(r.definitions)
}
