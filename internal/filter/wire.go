package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the ISO date format used by date range filters.
const DateLayout = "2006-01-02"

type wireMeta struct {
	ModuleName  string      `json:"moduleName"`
	FilterBy    string      `json:"filterBy"`
	ControlType ControlType `json:"controlType"`
	Label       string      `json:"label"`
	Description string      `json:"description,omitempty"`
}

type rangeNumericWire struct {
	wireMeta
	Range [2]float64 `json:"range"`
	Value [2]float64 `json:"value"`
}

type rangeDateWire struct {
	wireMeta
	Value [2]string `json:"value"`
}

type checkboxWire struct {
	wireMeta
	Options []string `json:"options"`
	Value   []string `json:"value"`
}

type inputTextWire struct {
	wireMeta
	Value string `json:"value"`
}

func metaWire(m Meta, t ControlType) wireMeta {
	return wireMeta{
		ModuleName:  m.ModuleName,
		FilterBy:    m.FilterBy,
		ControlType: t,
		Label:       m.Label,
		Description: m.Description,
	}
}

// wireOf converts a definition into its serialised shape.
func wireOf(def Definition) any {
	switch d := def.(type) {
	case *RangeNumeric:
		return rangeNumericWire{wireMeta: metaWire(d.Meta, TypeRangeNumeric), Range: d.Range, Value: d.Value}
	case *RangeDate:
		return rangeDateWire{wireMeta: metaWire(d.Meta, TypeRangeDate), Value: [2]string{d.Value.From, d.Value.To}}
	case *Checkbox:
		options := d.Options
		if options == nil {
			options = []string{}
		}
		return checkboxWire{wireMeta: metaWire(d.Meta, TypeCheckbox), Options: options, Value: d.SelectedValues()}
	case *InputText:
		return inputTextWire{wireMeta: metaWire(d.Meta, TypeInputText), Value: d.Value}
	default:
		panic("filter: unknown definition type")
	}
}

// Serialize encodes every definition of s, in display order, as the JSON
// array sent in the "filters" query parameter. An empty set encodes as "[]".
func Serialize(s *Set) (string, error) {
	items := make([]any, 0, s.Len())
	for _, id := range s.IDs() {
		items = append(items, wireOf(s.defs[id]))
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("serialize filters: %w", err)
	}
	return string(b), nil
}

// Clause is one decoded filter from a serialised query.
type Clause struct {
	ModuleName  string
	FilterBy    string
	ControlType ControlType

	// Range is the selected [lo, hi] of a numeric range filter.
	Range [2]float64
	// Dates holds the raw sides of a date range filter. After is the
	// inclusive lower instant and Before the exclusive upper instant; either
	// is zero when its side is unset.
	Dates  DateRange
	After  time.Time
	Before time.Time
	// Values lists the selected options of a checkbox filter.
	Values []string
	// Text is the value of a text filter.
	Text string
}

// Parse decodes a serialised filter query. It rejects unknown control types,
// inverted numeric ranges and dates that are neither YYYY-MM-DD nor RFC 3339.
// An empty query yields no clauses.
func Parse(query string) ([]Clause, error) {
	if len(bytes.TrimSpace([]byte(query))) == 0 {
		return nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(query), &raw); err != nil {
		return nil, fmt.Errorf("filters must be a JSON array: %w", err)
	}

	clauses := make([]Clause, 0, len(raw))
	for i, item := range raw {
		c, err := parseClause(item)
		if err != nil {
			return nil, fmt.Errorf("filters[%d]: %w", i, err)
		}
		clauses = append(clauses, c)
	}
	return clauses, nil
}

func parseClause(item json.RawMessage) (Clause, error) {
	var head wireMeta
	if err := json.Unmarshal(item, &head); err != nil {
		return Clause{}, err
	}
	if head.FilterBy == "" {
		return Clause{}, fmt.Errorf("filterBy is required")
	}

	c := Clause{ModuleName: head.ModuleName, FilterBy: head.FilterBy, ControlType: head.ControlType}

	switch head.ControlType {
	case TypeRangeNumeric:
		var w rangeNumericWire
		if err := json.Unmarshal(item, &w); err != nil {
			return Clause{}, err
		}
		if w.Value[0] > w.Value[1] {
			return Clause{}, ErrInvertedRange
		}
		c.Range = w.Value
	case TypeRangeDate:
		var w rangeDateWire
		if err := json.Unmarshal(item, &w); err != nil {
			return Clause{}, err
		}
		c.Dates = DateRange{From: w.Value[0], To: w.Value[1]}
		var err error
		if c.After, _, err = parseDate(w.Value[0]); err != nil {
			return Clause{}, err
		}
		before, dateOnly, err := parseDate(w.Value[1])
		if err != nil {
			return Clause{}, err
		}
		if dateOnly {
			before = before.AddDate(0, 0, 1)
		}
		c.Before = before
	case TypeCheckbox:
		var w checkboxWire
		if err := json.Unmarshal(item, &w); err != nil {
			return Clause{}, err
		}
		c.Values = w.Value
		if c.Values == nil {
			c.Values = []string{}
		}
	case TypeInputText:
		var w inputTextWire
		if err := json.Unmarshal(item, &w); err != nil {
			return Clause{}, err
		}
		c.Text = w.Value
	default:
		return Clause{}, fmt.Errorf("unknown controlType %q", head.ControlType)
	}
	return c, nil
}

// parseDate returns the zero time for an empty string. dateOnly reports
// whether s had no time component.
func parseDate(s string) (t time.Time, dateOnly bool, err error) {
	if s == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid date %q", s)
	}
	return t, false, nil
}

// Hydrate rebuilds a mapping from a serialised query, using template for
// ids, order and bounds. Each template entry takes its value from the first
// clause with the same filterBy and control type; entries with no matching
// clause are left at their reset value. Checkbox selections are restored
// from the clause's value list.
func Hydrate(template *Set, query string) (*Set, error) {
	clauses, err := Parse(query)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return &Set{defs: map[string]Definition{}}, nil
	}

	out := template.reset()
	used := make([]bool, len(clauses))
	for _, id := range out.order {
		def := out.defs[id]
		for i, c := range clauses {
			if used[i] || c.FilterBy != def.Base().FilterBy || c.ControlType != def.ControlType() {
				continue
			}
			used[i] = true
			switch d := def.(type) {
			case *RangeNumeric:
				d.Value = c.Range
			case *RangeDate:
				d.Value = c.Dates
			case *Checkbox:
				for _, v := range c.Values {
					d.Selected[v] = true
				}
			case *InputText:
				d.Value = c.Text
			}
			break
		}
	}
	return out, nil
}
