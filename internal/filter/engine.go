package filter

import (
	"fmt"
	"sync"
)

// Commit is the outcome of Apply or Reset. Set is the new authoritative
// mapping. Query is the serialised filter array to hand to the list
// controller; it is nil after Reset, meaning "no filter clause at all",
// which is not the same as an applied empty array.
type Commit struct {
	Set   *Set
	Query *string
}

// Engine owns the committed filter mapping of one screen and the draft the
// filter panel edits. Draft mutations never touch the committed mapping.
type Engine struct {
	mu        sync.Mutex
	committed *Set
	draft     *Set
}

// NewEngine creates an engine whose committed mapping is a copy of initial.
// A nil initial set yields an engine with no filters.
func NewEngine(initial *Set) *Engine {
	if initial == nil {
		initial = &Set{defs: map[string]Definition{}}
	}
	return &Engine{committed: initial.clone()}
}

// Open seeds a fresh draft from the committed mapping, discarding any
// half-edited draft from an earlier session.
func (e *Engine) Open() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = e.committed.clone()
}

// IsOpen reports whether a draft is being edited.
func (e *Engine) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft != nil
}

// Discard closes the panel without committing the draft.
func (e *Engine) Discard() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = nil
}

// Draft returns a copy of the draft, or of the committed mapping when the
// panel is closed.
func (e *Engine) Draft() *Set {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return e.committed.clone()
	}
	return e.draft.clone()
}

// Committed returns a copy of the last applied (or reset) mapping.
func (e *Engine) Committed() *Set {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.committed.clone()
}

// SetRangeNumeric replaces the value of a numeric range filter. Values are
// not clamped to the filter's bounds, but lo > hi is refused and the draft
// keeps its previous value.
func (e *Engine) SetRangeNumeric(id string, lo, hi float64) error {
	if err := checkRange(lo, hi); err != nil {
		return err
	}
	return e.mutate(id, func(def Definition) error {
		d, ok := def.(*RangeNumeric)
		if !ok {
			return shapeError(id, TypeRangeNumeric, def)
		}
		d.Value = [2]float64{lo, hi}
		return nil
	})
}

// SetRangeDate replaces one side of a date range filter. An empty string
// unsets that side.
func (e *Engine) SetRangeDate(id, field, iso string) error {
	if field != From && field != To {
		return ErrInvalidField
	}
	return e.mutate(id, func(def Definition) error {
		d, ok := def.(*RangeDate)
		if !ok {
			return shapeError(id, TypeRangeDate, def)
		}
		if field == From {
			d.Value.From = iso
		} else {
			d.Value.To = iso
		}
		return nil
	})
}

// ToggleOption flips the selection of one checkbox option.
func (e *Engine) ToggleOption(id, option string) error {
	return e.mutate(id, func(def Definition) error {
		d, ok := def.(*Checkbox)
		if !ok {
			return shapeError(id, TypeCheckbox, def)
		}
		if d.Selected == nil {
			d.Selected = map[string]bool{}
		}
		d.Selected[option] = !d.Selected[option]
		return nil
	})
}

// SetInputText replaces the value of a text filter verbatim.
func (e *Engine) SetInputText(id, value string) error {
	return e.mutate(id, func(def Definition) error {
		d, ok := def.(*InputText)
		if !ok {
			return shapeError(id, TypeInputText, def)
		}
		d.Value = value
		return nil
	})
}

// Apply serialises the draft, commits it as the authoritative mapping and
// closes the panel. Applying with the panel closed re-serialises the
// committed mapping, so two applies without edits produce identical output.
func (e *Engine) Apply() (Commit, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	src := e.draft
	if src == nil {
		src = e.committed
	}
	query, err := Serialize(src)
	if err != nil {
		return Commit{}, err
	}

	e.committed = src.clone()
	e.draft = nil
	return Commit{Set: e.committed.clone(), Query: &query}, nil
}

// Reset restores every filter to its reset value in the same order, commits
// the result and closes the panel. The returned Commit has a nil Query.
func (e *Engine) Reset() Commit {
	e.mu.Lock()
	defer e.mu.Unlock()

	src := e.draft
	if src == nil {
		src = e.committed
	}
	e.committed = src.reset()
	e.draft = nil
	return Commit{Set: e.committed.clone()}
}

// Restore replaces the committed mapping, e.g. with a set rebuilt by Hydrate
// from a persisted query. Any open draft is discarded.
func (e *Engine) Restore(set *Set) {
	if set == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.committed = set.clone()
	e.draft = nil
}

// mutate runs fn against the draft, opening one if the panel is closed.
// fn must leave the definition untouched when it returns an error.
func (e *Engine) mutate(id string, fn func(Definition) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft == nil {
		e.draft = e.committed.clone()
	}
	def, err := e.draft.lookup(id)
	if err != nil {
		return err
	}
	return fn(def)
}

func shapeError(id string, want ControlType, got Definition) error {
	return fmt.Errorf("%w: %q is %s, not %s", ErrShapeMismatch, id, got.ControlType(), want)
}
