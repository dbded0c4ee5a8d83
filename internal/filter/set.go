package filter

import (
	"fmt"
	"slices"
)

// Entry pairs a filter id with its definition.
type Entry struct {
	ID         string
	Definition Definition
}

// Set is an ordered mapping of filter id to definition. Insertion order is
// display order and is kept across reset and apply.
type Set struct {
	order []string
	defs  map[string]Definition
}

// NewSet builds a set from entries in the given order. Numeric ranges must
// have finite bounds with lo <= hi, and their value must be finite and
// ordered too.
func NewSet(entries ...Entry) (*Set, error) {
	s := &Set{defs: make(map[string]Definition, len(entries))}
	for _, e := range entries {
		if e.Definition == nil {
			return nil, fmt.Errorf("filter %q: definition is nil", e.ID)
		}
		if d, ok := e.Definition.(*RangeNumeric); ok {
			if err := checkRange(d.Range[0], d.Range[1]); err != nil {
				return nil, fmt.Errorf("filter %q bounds: %w", e.ID, err)
			}
			if err := checkRange(d.Value[0], d.Value[1]); err != nil {
				return nil, fmt.Errorf("filter %q value: %w", e.ID, err)
			}
		}
		if _, exists := s.defs[e.ID]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, e.ID)
		}
		s.order = append(s.order, e.ID)
		s.defs[e.ID] = clone(e.Definition)
	}
	return s, nil
}

// MustSet is NewSet for static filter tables; it panics on error.
func MustSet(entries ...Entry) *Set {
	s, err := NewSet(entries...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of filters.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// IDs returns the filter ids in display order.
func (s *Set) IDs() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.order)
}

// Get returns a copy of the definition stored under id.
func (s *Set) Get(id string) (Definition, bool) {
	if s == nil {
		return nil, false
	}
	def, ok := s.defs[id]
	if !ok {
		return nil, false
	}
	return clone(def), true
}

// Entries returns copies of all entries in display order.
func (s *Set) Entries() []Entry {
	if s == nil {
		return nil
	}
	out := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, Entry{ID: id, Definition: clone(s.defs[id])})
	}
	return out
}

func (s *Set) clone() *Set {
	c := &Set{order: slices.Clone(s.order), defs: make(map[string]Definition, len(s.defs))}
	for id, def := range s.defs {
		c.defs[id] = clone(def)
	}
	return c
}

func (s *Set) reset() *Set {
	c := &Set{order: slices.Clone(s.order), defs: make(map[string]Definition, len(s.defs))}
	for id, def := range s.defs {
		c.defs[id] = resetValue(def)
	}
	return c
}

// lookup returns the live definition for mutation.
func (s *Set) lookup(id string) (Definition, error) {
	def, ok := s.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, id)
	}
	return def, nil
}
