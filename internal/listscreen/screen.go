// Package listscreen composes the pieces behind one list screen: a list
// controller, its filter engine, a debounced search box and the storage
// that remembers the last applied filters.
package listscreen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/simp-lee/procurebase/internal/debounce"
	"github.com/simp-lee/procurebase/internal/filter"
	"github.com/simp-lee/procurebase/internal/kvstore"
	"github.com/simp-lee/procurebase/internal/listquery"
)

const keyPrefix = "listscreen:filters:"

// Config describes one screen.
type Config struct {
	// Key identifies the screen in the store, e.g. "vendors".
	Key      string
	Endpoint string
	Limit    int
	// Filters holds the filter definitions at their default values.
	Filters *filter.Set
	// Store is optional; without it applied filters are not remembered.
	Store      kvstore.Store
	SearchWait time.Duration
	Logger     *slog.Logger
	// ListOptions are passed through to the list controller.
	ListOptions []listquery.Option
}

// Screen is the state owner of one list screen.
type Screen[T any] struct {
	key     string
	store   kvstore.Store
	logger  *slog.Logger
	list    *listquery.Controller[T]
	filters *filter.Engine
	search  *debounce.Debouncer[string]
}

// New builds a screen. When the store holds an applied query for cfg.Key it
// is restored into the filter engine and used by the first fetch; a stored
// query that no longer parses is dropped. New does not fetch.
func New[T any](ctx context.Context, getter listquery.Getter, cfg Config) (*Screen[T], error) {
	if cfg.Key == "" {
		return nil, errors.New("listscreen: key is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("screen", cfg.Key))

	s := &Screen[T]{
		key:     cfg.Key,
		store:   cfg.Store,
		logger:  logger,
		filters: filter.NewEngine(cfg.Filters),
	}

	opts := append([]listquery.Option{listquery.WithLogger(logger)}, cfg.ListOptions...)
	restored, err := s.restore(ctx, cfg.Filters)
	if err != nil {
		return nil, err
	}
	if restored != nil {
		s.filters.Restore(restored.Set)
		opts = append(opts, listquery.WithFilters(*restored.Query))
	}

	s.list, err = listquery.New[T](getter, cfg.Endpoint, cfg.Limit, opts...)
	if err != nil {
		return nil, err
	}
	s.search = debounce.New(cfg.SearchWait, s.list.SetSearch)
	return s, nil
}

func (s *Screen[T]) restore(ctx context.Context, template *filter.Set) (*filter.Commit, error) {
	if s.store == nil {
		return nil, nil
	}
	stored, ok, err := s.store.Get(ctx, s.storeKey())
	if err != nil {
		return nil, fmt.Errorf("listscreen: load filters: %w", err)
	}
	if !ok {
		return nil, nil
	}

	set, err := filter.Hydrate(template, stored)
	if err == nil {
		var query string
		if query, err = filter.Serialize(set); err == nil {
			s.logger.Debug("restored applied filters", slog.String("filters", query))
			return &filter.Commit{Set: set, Query: &query}, nil
		}
	}

	s.logger.Warn("dropping unreadable stored filters", slog.Any("error", err))
	if err := s.store.Delete(ctx, s.storeKey()); err != nil {
		return nil, fmt.Errorf("listscreen: drop filters: %w", err)
	}
	return nil, nil
}

func (s *Screen[T]) storeKey() string {
	return keyPrefix + s.key
}

// Start loads the first page.
func (s *Screen[T]) Start() {
	s.list.Refetch()
}

// TypeSearch records a keystroke in the search box. The controller only sees
// the text once typing pauses for the debounce wait.
func (s *Screen[T]) TypeSearch(text string) {
	s.search.Call(text)
}

// FlushSearch submits pending search text immediately, e.g. on Enter.
func (s *Screen[T]) FlushSearch() {
	s.search.Flush()
}

// Filters exposes the filter engine for draft edits.
func (s *Screen[T]) Filters() *filter.Engine {
	return s.filters
}

// OpenFilters opens the filter panel with a draft of the applied filters.
func (s *Screen[T]) OpenFilters() {
	s.filters.Open()
}

// ApplyFilters commits the draft, fetches page 1 with the new query and
// remembers it. The fetch is issued even when persisting fails.
func (s *Screen[T]) ApplyFilters(ctx context.Context) error {
	commit, err := s.filters.Apply()
	if err != nil {
		return err
	}
	s.list.SetFilters(commit.Query)

	if s.store == nil {
		return nil
	}
	if err := s.store.Set(ctx, s.storeKey(), *commit.Query); err != nil {
		return fmt.Errorf("listscreen: save filters: %w", err)
	}
	return nil
}

// ResetFilters restores the default filters, fetches page 1 without a
// filter clause and forgets the remembered query.
func (s *Screen[T]) ResetFilters(ctx context.Context) error {
	commit := s.filters.Reset()
	s.list.SetFilters(commit.Query)

	if s.store == nil {
		return nil
	}
	if err := s.store.Delete(ctx, s.storeKey()); err != nil {
		return fmt.Errorf("listscreen: clear filters: %w", err)
	}
	return nil
}

// SetPage moves to page n and fetches it; n < 1 is ignored.
func (s *Screen[T]) SetPage(n int) {
	s.list.SetPage(n)
}

// Refetch reloads the current page with the applied search and filters.
func (s *Screen[T]) Refetch() {
	s.list.Refetch()
}

// State returns a snapshot of the list.
func (s *Screen[T]) State() listquery.State[T] {
	return s.list.State()
}

// Wait blocks until every issued fetch has resolved.
func (s *Screen[T]) Wait() {
	s.list.Wait()
}

// Close drops pending search text and in-flight fetches.
func (s *Screen[T]) Close() {
	s.search.Stop()
	s.list.Close()
}
