// Package filter models the heterogeneous filter controls shown above list
// screens, the draft a user edits in the filter panel, and the JSON wire form
// sent to list endpoints in the "filters" query parameter.
package filter

import (
	"errors"
	"maps"
	"math"
	"slices"
)

// ControlType discriminates the four filter shapes.
type ControlType string

const (
	TypeRangeNumeric ControlType = "rangeNumeric"
	TypeRangeDate    ControlType = "rangeDate"
	TypeCheckbox     ControlType = "checkbox"
	TypeInputText    ControlType = "inputText"
)

// Date range sides accepted by SetRangeDate.
const (
	From = "from"
	To   = "to"
)

var (
	// ErrUnknownFilter is returned when a mutation names an id that is not in the set.
	ErrUnknownFilter = errors.New("filter: unknown filter id")
	// ErrShapeMismatch is returned when a mutation targets a filter of another control type.
	ErrShapeMismatch = errors.New("filter: control type mismatch")
	// ErrInvertedRange is returned when a numeric range has lo > hi.
	ErrInvertedRange = errors.New("filter: range lower bound exceeds upper bound")
	// ErrInvalidNumber is returned for NaN or infinite range values.
	ErrInvalidNumber = errors.New("filter: range value is not a finite number")
	// ErrInvalidField is returned when a date side is neither From nor To.
	ErrInvalidField = errors.New("filter: date field must be \"from\" or \"to\"")
	// ErrDuplicateID is returned when a set is built with the same id twice.
	ErrDuplicateID = errors.New("filter: duplicate filter id")
)

// Meta is shared by every filter shape. Only FilterBy is behaviourally
// significant: it names the server-side field the filter targets.
type Meta struct {
	ModuleName  string
	FilterBy    string
	Label       string
	Description string
}

// Definition is one configurable filter. The set of implementations is closed;
// code that switches over definitions handles exactly the four types below.
type Definition interface {
	Base() Meta
	ControlType() ControlType
	sealed()
}

// RangeNumeric filters a numeric field between two bounds.
type RangeNumeric struct {
	Meta
	Range [2]float64
	Value [2]float64
}

// DateRange holds ISO date strings; an empty side is unset.
type DateRange struct {
	From string
	To   string
}

// RangeDate filters a date field between two optional sides.
type RangeDate struct {
	Meta
	Value DateRange
}

// Checkbox filters a field to a set of selected options.
type Checkbox struct {
	Meta
	Options  []string
	Selected map[string]bool
}

// InputText filters a field by free text.
type InputText struct {
	Meta
	Value string
}

func (d *RangeNumeric) Base() Meta { return d.Meta }
func (d *RangeDate) Base() Meta    { return d.Meta }
func (d *Checkbox) Base() Meta     { return d.Meta }
func (d *InputText) Base() Meta    { return d.Meta }

func (*RangeNumeric) ControlType() ControlType { return TypeRangeNumeric }
func (*RangeDate) ControlType() ControlType    { return TypeRangeDate }
func (*Checkbox) ControlType() ControlType     { return TypeCheckbox }
func (*InputText) ControlType() ControlType    { return TypeInputText }

func (*RangeNumeric) sealed() {}
func (*RangeDate) sealed()    {}
func (*Checkbox) sealed()     {}
func (*InputText) sealed()    {}

// NewRangeNumeric returns a numeric range filter at its reset value. The
// bounds are checked when the filter is added to a set: NewSet refuses
// non-finite or inverted bounds.
func NewRangeNumeric(meta Meta, lo, hi float64) *RangeNumeric {
	return &RangeNumeric{Meta: meta, Range: [2]float64{lo, hi}, Value: [2]float64{lo, hi}}
}

func checkRange(lo, hi float64) error {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return ErrInvalidNumber
	}
	if lo > hi {
		return ErrInvertedRange
	}
	return nil
}

// NewRangeDate returns a date range filter at its reset value.
func NewRangeDate(meta Meta) *RangeDate {
	return &RangeDate{Meta: meta}
}

// NewCheckbox returns a checkbox filter with nothing selected.
func NewCheckbox(meta Meta, options ...string) *Checkbox {
	return &Checkbox{Meta: meta, Options: slices.Clone(options), Selected: map[string]bool{}}
}

// NewInputText returns an empty text filter.
func NewInputText(meta Meta) *InputText {
	return &InputText{Meta: meta}
}

// clone returns a deep copy so drafts never alias committed state.
func clone(def Definition) Definition {
	switch d := def.(type) {
	case *RangeNumeric:
		c := *d
		return &c
	case *RangeDate:
		c := *d
		return &c
	case *Checkbox:
		c := *d
		c.Options = slices.Clone(d.Options)
		c.Selected = maps.Clone(d.Selected)
		if c.Selected == nil {
			c.Selected = map[string]bool{}
		}
		return &c
	case *InputText:
		c := *d
		return &c
	default:
		panic("filter: unknown definition type")
	}
}

// resetValue returns a copy of def at its reset value.
func resetValue(def Definition) Definition {
	switch d := def.(type) {
	case *RangeNumeric:
		c := *d
		c.Value = c.Range
		return &c
	case *RangeDate:
		c := *d
		c.Value = DateRange{}
		return &c
	case *Checkbox:
		c := *d
		c.Options = slices.Clone(d.Options)
		c.Selected = map[string]bool{}
		return &c
	case *InputText:
		c := *d
		c.Value = ""
		return &c
	default:
		panic("filter: unknown definition type")
	}
}

// SelectedValues lists the selected options in option order, followed by any
// selected keys that are not options, sorted.
func (d *Checkbox) SelectedValues() []string {
	out := make([]string, 0, len(d.Selected))
	known := make(map[string]struct{}, len(d.Options))
	for _, opt := range d.Options {
		known[opt] = struct{}{}
		if d.Selected[opt] {
			out = append(out, opt)
		}
	}
	var extra []string
	for key, on := range d.Selected {
		if _, ok := known[key]; !ok && on {
			extra = append(extra, key)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}
