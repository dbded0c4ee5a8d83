package listscreen

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simp-lee/procurebase/internal/filter"
	"github.com/simp-lee/procurebase/internal/kvstore"
	"github.com/simp-lee/procurebase/internal/listquery"
)

type vendor struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type recorder struct {
	mu    sync.Mutex
	calls []url.Values
}

func (r *recorder) Get(_ context.Context, _ string, params url.Values) (*listquery.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, params)
	return &listquery.Page{Data: json.RawMessage(`[{"id":1,"name":"Acme"}]`), TotalCount: 1, TotalDoc: 1}, nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recorder) last() url.Values {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

func vendorFilters() *filter.Set {
	return filter.MustSet(
		filter.Entry{ID: "rating", Definition: filter.NewRangeNumeric(filter.Meta{ModuleName: "vendor", FilterBy: "rating", Label: "Rating"}, 0, 5)},
		filter.Entry{ID: "status", Definition: filter.NewCheckbox(filter.Meta{ModuleName: "vendor", FilterBy: "status", Label: "Status"}, "active", "inactive", "pending")},
	)
}

func newScreen(t *testing.T, g listquery.Getter, store kvstore.Store) *Screen[vendor] {
	t.Helper()
	s, err := New[vendor](context.Background(), g, Config{
		Key:        "vendors",
		Endpoint:   "/vendors",
		Limit:      10,
		Filters:    vendorFilters(),
		Store:      store,
		SearchWait: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestScreen_ApplyPersistsAndResetForgets(t *testing.T) {
	ctx := context.Background()
	g := &recorder{}
	store := kvstore.NewMemory()
	s := newScreen(t, g, store)

	s.Start()
	s.Wait()
	_, hasFilters := g.last()["filters"]
	assert.False(t, hasFilters)

	s.SetPage(3)
	s.Wait()

	s.OpenFilters()
	require.NoError(t, s.Filters().ToggleOption("status", "active"))
	require.NoError(t, s.ApplyFilters(ctx))
	s.Wait()

	applied := g.last().Get("filters")
	assert.Equal(t, "1", g.last().Get("page"))
	assert.Contains(t, applied, `"value":["active"]`)

	stored, ok, err := store.Get(ctx, "listscreen:filters:vendors")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, applied, stored)

	require.NoError(t, s.ResetFilters(ctx))
	s.Wait()

	_, hasFilters = g.last()["filters"]
	assert.False(t, hasFilters, "reset sends no filter clause")
	assert.Nil(t, s.State().Filters)
	_, ok, err = store.Get(ctx, "listscreen:filters:vendors")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScreen_RestoresRememberedFilters(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()

	first := newScreen(t, &recorder{}, store)
	first.OpenFilters()
	require.NoError(t, first.Filters().SetRangeNumeric("rating", 3, 5))
	require.NoError(t, first.Filters().ToggleOption("status", "pending"))
	require.NoError(t, first.ApplyFilters(ctx))
	first.Close()

	g := &recorder{}
	second := newScreen(t, g, store)

	st := second.State()
	require.NotNil(t, st.Filters)

	def, ok := second.Filters().Committed().Get("status")
	require.True(t, ok)
	assert.Equal(t, []string{"pending"}, def.(*filter.Checkbox).SelectedValues())

	def, ok = second.Filters().Committed().Get("rating")
	require.True(t, ok)
	assert.Equal(t, [2]float64{3, 5}, def.(*filter.RangeNumeric).Value)

	second.Start()
	second.Wait()
	assert.Equal(t, *st.Filters, g.last().Get("filters"))
}

func TestScreen_DropsUnreadableStoredFilters(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	require.NoError(t, store.Set(ctx, "listscreen:filters:vendors", `{not json`))

	s := newScreen(t, &recorder{}, store)

	assert.Nil(t, s.State().Filters)
	_, ok, err := store.Get(ctx, "listscreen:filters:vendors")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScreen_SearchIsDebounced(t *testing.T) {
	g := &recorder{}
	s := newScreen(t, g, nil)

	s.Start()
	s.Wait()
	s.SetPage(2)
	s.Wait()
	before := g.count()

	for _, text := range []string{"a", "ac", "acm", "acme"} {
		s.TypeSearch(text)
	}

	require.Eventually(t, func() bool { return g.count() == before+1 }, 2*time.Second, 5*time.Millisecond)
	s.Wait()
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, before+1, g.count(), "one fetch for the whole burst")
	assert.Equal(t, "acme", g.last().Get("search"))
	assert.Equal(t, "1", g.last().Get("page"))
}

func TestScreen_CloseDropsPendingSearch(t *testing.T) {
	g := &recorder{}
	s, err := New[vendor](context.Background(), g, Config{
		Key:        "vendors",
		Endpoint:   "/vendors",
		Limit:      10,
		SearchWait: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	s.TypeSearch("acme")
	s.Close()
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 0, g.count())
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New[vendor](context.Background(), &recorder{}, Config{Endpoint: "/vendors", Limit: 10})
	assert.Error(t, err)
}
