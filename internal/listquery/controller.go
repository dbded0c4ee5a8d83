// Package listquery drives one paginated, searchable, filterable list backed
// by a GET endpoint. A Controller owns the query inputs (page, search,
// filters), issues a fetch whenever one changes, and applies only the result
// of the most recently issued request.
package listquery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrNilGetter is returned by New when no HTTP collaborator is given.
	ErrNilGetter = errors.New("listquery: getter is nil")
	// ErrInvalidLimit is returned by New for a non-positive page size.
	ErrInvalidLimit = errors.New("listquery: limit must be positive")
	// ErrEmptyEndpoint is returned by New for an empty endpoint.
	ErrEmptyEndpoint = errors.New("listquery: endpoint is required")
)

// FetchError is the recoverable failure stored in State.Err.
type FetchError struct {
	Endpoint string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Option configures a Controller.
type Option func(*options)

type options struct {
	extra    map[string]string
	filters  *string
	logger   *slog.Logger
	meter    metric.Meter
	onChange func()
}

// WithExtraParams merges static query parameters into every request, e.g.
// a parent id for "purchase orders of requisition X".
func WithExtraParams(params map[string]string) Option {
	return func(o *options) { o.extra = maps.Clone(params) }
}

// WithFilters sets the serialised filter query the first fetch starts with,
// e.g. one restored from storage.
func WithFilters(query string) Option {
	return func(o *options) { o.filters = &query }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMeter sets the meter fetch metrics are recorded on. Defaults to the
// global otel meter provider.
func WithMeter(m metric.Meter) Option {
	return func(o *options) { o.meter = m }
}

// WithOnChange registers fn to be called after every state transition.
// Calls are serialised. fn reads the current state with State and must not
// call setters synchronously.
func WithOnChange(fn func()) Option {
	return func(o *options) { o.onChange = fn }
}

// Controller is the single source of truth for one list. It is safe for
// concurrent use, but is meant to be owned by exactly one screen.
type Controller[T any] struct {
	getter   Getter
	endpoint string
	limit    int
	logger   *slog.Logger
	metrics  *fetchMetrics
	onChange func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	notifyMu sync.Mutex

	mu      sync.Mutex
	seq     uint64
	page    int
	search  string
	filters *string
	extra   map[string]string

	items      []T
	totalCount int
	totalDoc   int
	extraData  map[string]json.RawMessage
	loaded     bool
	loading    bool
	err        error
}

// New creates a controller for endpoint with a fixed page size. It does not
// fetch; call Refetch to load the first page.
func New[T any](getter Getter, endpoint string, limit int, opts ...Option) (*Controller[T], error) {
	if getter == nil {
		return nil, ErrNilGetter
	}
	if endpoint == "" {
		return nil, ErrEmptyEndpoint
	}
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller[T]{
		getter:   getter,
		endpoint: endpoint,
		limit:    limit,
		logger:   o.logger.With(slog.String("endpoint", endpoint)),
		metrics:  newFetchMetrics(o.meter, endpoint),
		onChange: o.onChange,
		ctx:      ctx,
		cancel:   cancel,
		page:     1,
		filters:  o.filters,
		extra:    o.extra,
	}, nil
}

// State returns a snapshot of the current state.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SetPage moves to page n and fetches it. Values below 1 are ignored; the
// upper bound is the pagination UI's concern.
func (c *Controller[T]) SetPage(n int) {
	if n < 1 {
		c.logger.Debug("ignoring invalid page", slog.Int("page", n))
		return
	}
	c.mu.Lock()
	c.page = n
	c.fetchLocked()
}

// SetSearch replaces the search text, returns to page 1 and fetches.
func (c *Controller[T]) SetSearch(s string) {
	c.mu.Lock()
	c.search = s
	c.page = 1
	c.fetchLocked()
}

// SetFilters replaces the serialised filter query, returns to page 1 and
// fetches. A nil query removes the filter clause entirely.
func (c *Controller[T]) SetFilters(query *string) {
	c.mu.Lock()
	if query == nil {
		c.filters = nil
	} else {
		q := *query
		c.filters = &q
	}
	c.page = 1
	c.fetchLocked()
}

// SetExtraParams replaces the static parameters and fetches. The page is
// kept.
func (c *Controller[T]) SetExtraParams(params map[string]string) {
	c.mu.Lock()
	c.extra = maps.Clone(params)
	c.fetchLocked()
}

// Refetch re-issues the current query, e.g. after a row was deleted.
func (c *Controller[T]) Refetch() {
	c.mu.Lock()
	c.fetchLocked()
}

// Wait blocks until every fetch issued so far has resolved.
func (c *Controller[T]) Wait() {
	c.wg.Wait()
}

// Close cancels in-flight requests and waits for them to finish. Results
// arriving after Close are discarded.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	c.seq++
	c.loading = false
	c.cancel()
	c.mu.Unlock()
	c.wg.Wait()
}

// paramsLocked builds the request parameters. Empty search and filters are
// omitted; static params are merged last.
func (c *Controller[T]) paramsLocked() url.Values {
	params := url.Values{}
	params.Set("page", strconv.Itoa(c.page))
	params.Set("limit", strconv.Itoa(c.limit))
	if c.search != "" {
		params.Set("search", c.search)
	}
	if c.filters != nil && *c.filters != "" {
		params.Set("filters", *c.filters)
	}
	for k, v := range c.extra {
		params.Set(k, v)
	}
	return params
}

// fetchLocked issues a new request tagged with the next sequence number. It
// must be called with c.mu held and releases it.
func (c *Controller[T]) fetchLocked() {
	if c.ctx.Err() != nil {
		c.mu.Unlock()
		return
	}

	c.seq++
	seq := c.seq
	params := c.paramsLocked()
	c.loading = true
	c.err = nil
	c.wg.Add(1)
	c.publishLocked()

	go c.run(seq, params)
}

func (c *Controller[T]) run(seq uint64, params url.Values) {
	defer c.wg.Done()

	start := time.Now()
	items, page, err := c.load(params)
	elapsed := time.Since(start)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.metrics.record(c.ctx, outcomeStale, elapsed)
		c.logger.Debug("discarding stale list response",
			slog.Uint64("seq", seq),
			slog.String("params", params.Encode()),
		)
		return
	}

	c.loading = false
	if err != nil {
		c.err = &FetchError{Endpoint: c.endpoint, Err: err}
		c.metrics.record(c.ctx, outcomeError, elapsed)
		c.logger.Warn("list fetch failed",
			slog.String("params", params.Encode()),
			slog.Any("error", err),
		)
	} else {
		c.items = items
		c.totalCount = page.TotalCount
		c.totalDoc = page.TotalDoc
		c.extraData = page.Extra
		c.loaded = true
		c.err = nil
		c.metrics.record(c.ctx, outcomeOK, elapsed)
	}
	c.publishLocked()
}

func (c *Controller[T]) load(params url.Values) ([]T, *Page, error) {
	page, err := c.getter.Get(c.ctx, c.endpoint, params)
	if err != nil {
		return nil, nil, err
	}
	if page == nil {
		return nil, nil, errors.New("empty response")
	}

	items := []T{}
	if len(page.Data) > 0 && string(page.Data) != "null" {
		if err := json.Unmarshal(page.Data, &items); err != nil {
			return nil, nil, fmt.Errorf("decode rows: %w", err)
		}
	}
	return items, page, nil
}

// publishLocked releases c.mu and notifies the observer, which reads the
// latest state through State.
func (c *Controller[T]) publishLocked() {
	c.mu.Unlock()
	if c.onChange == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.onChange()
}

func (c *Controller[T]) snapshotLocked() State[T] {
	var filters *string
	if c.filters != nil {
		f := *c.filters
		filters = &f
	}
	return State[T]{
		Page:       c.page,
		Limit:      c.limit,
		Search:     c.search,
		Filters:    filters,
		Items:      c.items,
		TotalCount: c.totalCount,
		TotalDoc:   c.totalDoc,
		Extra:      c.extraData,
		Loaded:     c.loaded,
		Loading:    c.loading,
		Err:        c.err,
	}
}
