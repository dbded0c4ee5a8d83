package listquery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Getter is the HTTP collaborator a Controller fetches through. It issues a
// GET for path with the given query parameters and decodes the list envelope.
// Any returned error is treated as a fetch failure; any returned page is
// trusted as-is.
type Getter interface {
	Get(ctx context.Context, path string, params url.Values) (*Page, error)
}

// GetterFunc adapts a function to the Getter interface.
type GetterFunc func(ctx context.Context, path string, params url.Values) (*Page, error)

// Get calls f.
func (f GetterFunc) Get(ctx context.Context, path string, params url.Values) (*Page, error) {
	return f(ctx, path, params)
}

// Page is one list response:
//
//	{"data": [...], "totalCount": <pages>, "totalDoc": <rows>, ...extra}
//
// Every key other than data, totalCount and totalDoc is kept undecoded in
// Extra; those are server-defined aggregates unrelated to the paged rows.
type Page struct {
	Data       json.RawMessage
	TotalCount int
	TotalDoc   int
	Extra      map[string]json.RawMessage
}

// UnmarshalJSON decodes the flat list envelope.
func (p *Page) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}

	*p = Page{Extra: make(map[string]json.RawMessage)}
	for key, raw := range fields {
		switch key {
		case "data":
			p.Data = raw
		case "totalCount":
			if err := json.Unmarshal(raw, &p.TotalCount); err != nil {
				return fmt.Errorf("totalCount: %w", err)
			}
		case "totalDoc":
			if err := json.Unmarshal(raw, &p.TotalDoc); err != nil {
				return fmt.Errorf("totalDoc: %w", err)
			}
		default:
			p.Extra[key] = raw
		}
	}
	return nil
}

// MarshalJSON encodes the page back into the flat envelope.
func (p Page) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+3)
	for k, v := range p.Extra {
		out[k] = v
	}
	data := p.Data
	if len(data) == 0 {
		data = json.RawMessage("[]")
	}
	out["data"] = data
	out["totalCount"] = p.TotalCount
	out["totalDoc"] = p.TotalDoc
	return json.Marshal(out)
}
