package listquery

import (
	"encoding/json"
	"fmt"
)

// State is a snapshot of a Controller.
type State[T any] struct {
	Page   int
	Limit  int
	Search string
	// Filters is the applied serialised filter query, nil when no filter
	// clause is sent at all.
	Filters *string

	Items      []T
	TotalCount int
	TotalDoc   int
	Extra      map[string]json.RawMessage

	// Loaded is set once any fetch has succeeded.
	Loaded  bool
	Loading bool
	Err     error
}

// Empty reports the "no entries" state: the last successful fetch matched
// nothing. It is false before the first fetch resolves.
func (s State[T]) Empty() bool {
	return s.Loaded && !s.Loading && s.Err == nil && s.TotalDoc == 0
}

// Range returns the 1-based positions of the current page's first and last
// rows and the total row count, for "showing X-Y of N". ok is false when
// there are no entries.
func (s State[T]) Range() (from, to, total int, ok bool) {
	if s.TotalDoc <= 0 || s.Page < 1 {
		return 0, 0, s.TotalDoc, false
	}
	from = (s.Page-1)*s.Limit + 1
	if from > s.TotalDoc {
		return 0, 0, s.TotalDoc, false
	}
	to = min(from+len(s.Items)-1, s.TotalDoc)
	if len(s.Items) == 0 {
		to = min(s.Page*s.Limit, s.TotalDoc)
	}
	return from, to, s.TotalDoc, true
}

// ErrorMessage returns the human-readable fetch error, or "".
func (s State[T]) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// ExtraValue decodes the extra aggregate stored under key into dst.
func (s State[T]) ExtraValue(key string, dst any) error {
	raw, ok := s.Extra[key]
	if !ok {
		return fmt.Errorf("extra %q not present", key)
	}
	return json.Unmarshal(raw, dst)
}
