package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vendorFilters(t *testing.T) *Set {
	t.Helper()
	s, err := NewSet(
		Entry{ID: "rating", Definition: NewRangeNumeric(Meta{ModuleName: "vendor", FilterBy: "rating", Label: "Rating"}, 0, 500)},
		Entry{ID: "onboarded", Definition: NewRangeDate(Meta{ModuleName: "vendor", FilterBy: "onboarded_at", Label: "Onboarded"})},
		Entry{ID: "status", Definition: NewCheckbox(Meta{ModuleName: "vendor", FilterBy: "status", Label: "Status"}, "A", "B")},
		Entry{ID: "email", Definition: NewInputText(Meta{ModuleName: "vendor", FilterBy: "email", Label: "Email"})},
	)
	require.NoError(t, err)
	return s
}

func TestNewSet_RejectsDuplicateIDs(t *testing.T) {
	_, err := NewSet(
		Entry{ID: "x", Definition: NewInputText(Meta{FilterBy: "x"})},
		Entry{ID: "x", Definition: NewInputText(Meta{FilterBy: "x"})},
	)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestNewSet_RejectsInvalidNumericBounds(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi float64
		want   error
	}{
		{name: "inverted", lo: 5, hi: 0, want: ErrInvertedRange},
		{name: "NaN", lo: math.NaN(), hi: 5, want: ErrInvalidNumber},
		{name: "infinite", lo: 0, hi: math.Inf(1), want: ErrInvalidNumber},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSet(Entry{ID: "rating", Definition: NewRangeNumeric(Meta{FilterBy: "rating"}, tt.lo, tt.hi)})
			assert.ErrorIs(t, err, tt.want)
			assert.Panics(t, func() {
				MustSet(Entry{ID: "rating", Definition: NewRangeNumeric(Meta{FilterBy: "rating"}, tt.lo, tt.hi)})
			})
		})
	}

	_, err := NewSet(Entry{ID: "rating", Definition: NewRangeNumeric(Meta{FilterBy: "rating"}, 3, 3)})
	assert.NoError(t, err, "a single-point range is valid")
}

func TestSetRangeNumeric_RefusesInvertedRange(t *testing.T) {
	e := NewEngine(vendorFilters(t))
	e.Open()

	err := e.SetRangeNumeric("rating", 100, 50)
	assert.ErrorIs(t, err, ErrInvertedRange)

	def, ok := e.Draft().Get("rating")
	require.True(t, ok)
	assert.Equal(t, [2]float64{0, 500}, def.(*RangeNumeric).Value)

	require.NoError(t, e.SetRangeNumeric("rating", 100, 200))
	require.ErrorIs(t, e.SetRangeNumeric("rating", 300, 10), ErrInvertedRange)

	def, _ = e.Draft().Get("rating")
	assert.Equal(t, [2]float64{100, 200}, def.(*RangeNumeric).Value)
}

func TestSetRangeNumeric_DoesNotClamp(t *testing.T) {
	e := NewEngine(vendorFilters(t))
	require.NoError(t, e.SetRangeNumeric("rating", -10, 900))

	def, _ := e.Draft().Get("rating")
	assert.Equal(t, [2]float64{-10, 900}, def.(*RangeNumeric).Value)
}

func TestMutations_ShapeAndIDErrors(t *testing.T) {
	e := NewEngine(vendorFilters(t))

	assert.ErrorIs(t, e.SetInputText("missing", "x"), ErrUnknownFilter)
	assert.ErrorIs(t, e.SetInputText("rating", "x"), ErrShapeMismatch)
	assert.ErrorIs(t, e.ToggleOption("email", "A"), ErrShapeMismatch)
	assert.ErrorIs(t, e.SetRangeDate("onboarded", "middle", "2024-01-01"), ErrInvalidField)
	assert.ErrorIs(t, e.SetRangeNumeric("status", 1, 2), ErrShapeMismatch)
}

func TestDraftDoesNotTouchCommitted(t *testing.T) {
	e := NewEngine(vendorFilters(t))
	e.Open()
	require.NoError(t, e.SetInputText("email", "acme"))
	require.NoError(t, e.ToggleOption("status", "A"))

	committed := e.Committed()
	email, _ := committed.Get("email")
	assert.Equal(t, "", email.(*InputText).Value)
	status, _ := committed.Get("status")
	assert.Empty(t, status.(*Checkbox).SelectedValues())
}

func TestApply_SerializesEveryShape(t *testing.T) {
	e := NewEngine(vendorFilters(t))
	e.Open()
	require.NoError(t, e.SetRangeNumeric("rating", 100, 250))
	require.NoError(t, e.SetRangeDate("onboarded", From, "2024-01-01"))
	require.NoError(t, e.ToggleOption("status", "B"))
	require.NoError(t, e.SetInputText("email", "  Acme "))

	commit, err := e.Apply()
	require.NoError(t, err)
	require.NotNil(t, commit.Query)
	assert.False(t, e.IsOpen())

	want := `[` +
		`{"moduleName":"vendor","filterBy":"rating","controlType":"rangeNumeric","label":"Rating","range":[0,500],"value":[100,250]},` +
		`{"moduleName":"vendor","filterBy":"onboarded_at","controlType":"rangeDate","label":"Onboarded","value":["2024-01-01",""]},` +
		`{"moduleName":"vendor","filterBy":"status","controlType":"checkbox","label":"Status","options":["A","B"],"value":["B"]},` +
		`{"moduleName":"vendor","filterBy":"email","controlType":"inputText","label":"Email","value":"  Acme "}` +
		`]`
	assert.JSONEq(t, want, *commit.Query)
	assert.NotContains(t, *commit.Query, "selected")
	assert.Equal(t, []string{"rating", "onboarded", "status", "email"}, commit.Set.IDs())
}

func TestApply_KeepsNoOpRangeFilters(t *testing.T) {
	e := NewEngine(MustSet(Entry{ID: "rating", Definition: NewRangeNumeric(Meta{FilterBy: "rating"}, 0, 500)}))

	commit, err := e.Apply()
	require.NoError(t, err)

	clauses, err := Parse(*commit.Query)
	require.NoError(t, err)
	require.Len(t, clauses, 1)
	assert.Equal(t, [2]float64{0, 500}, clauses[0].Range)
}

func TestApply_EmptyDraftYieldsEmptyArray(t *testing.T) {
	e := NewEngine(nil)
	e.Open()

	commit, err := e.Apply()
	require.NoError(t, err)
	require.NotNil(t, commit.Query)
	assert.Equal(t, "[]", *commit.Query)
}

func TestApply_TwiceIsByteIdentical(t *testing.T) {
	e := NewEngine(vendorFilters(t))
	require.NoError(t, e.ToggleOption("status", "A"))
	require.NoError(t, e.ToggleOption("status", "B"))
	require.NoError(t, e.SetRangeDate("onboarded", To, "2024-12-31"))

	first, err := e.Apply()
	require.NoError(t, err)
	second, err := e.Apply()
	require.NoError(t, err)
	assert.Equal(t, *first.Query, *second.Query)

	e.Open()
	third, err := e.Apply()
	require.NoError(t, err)
	assert.Equal(t, *first.Query, *third.Query)
}

func TestReset_RestoresDefaultsAndClearsQuery(t *testing.T) {
	e := NewEngine(vendorFilters(t))
	e.Open()
	require.NoError(t, e.SetRangeNumeric("rating", 10, 20))
	require.NoError(t, e.SetRangeDate("onboarded", To, "2024-02-01"))
	require.NoError(t, e.ToggleOption("status", "A"))
	require.NoError(t, e.SetInputText("email", "x"))
	_, err := e.Apply()
	require.NoError(t, err)

	commit := e.Reset()
	assert.Nil(t, commit.Query, "reset must clear filters, not apply an empty array")
	assert.Equal(t, []string{"rating", "onboarded", "status", "email"}, commit.Set.IDs())

	rating, _ := commit.Set.Get("rating")
	assert.Equal(t, [2]float64{0, 500}, rating.(*RangeNumeric).Value)
	dates, _ := commit.Set.Get("onboarded")
	assert.Equal(t, DateRange{}, dates.(*RangeDate).Value)
	status, _ := commit.Set.Get("status")
	assert.Empty(t, status.(*Checkbox).Selected)
	email, _ := commit.Set.Get("email")
	assert.Equal(t, "", email.(*InputText).Value)

	draft := e.Draft()
	assert.Equal(t, commit.Set.IDs(), draft.IDs())
}

func TestOpen_SeedsFromCommittedNotStaleDraft(t *testing.T) {
	e := NewEngine(vendorFilters(t))
	e.Open()
	require.NoError(t, e.SetInputText("email", "applied"))
	_, err := e.Apply()
	require.NoError(t, err)

	e.Open()
	require.NoError(t, e.SetInputText("email", "half-edited"))
	e.Discard()

	e.Open()
	def, _ := e.Draft().Get("email")
	assert.Equal(t, "applied", def.(*InputText).Value)
}

func TestToggleOption_FlipsAbsentAsFalse(t *testing.T) {
	e := NewEngine(vendorFilters(t))
	require.NoError(t, e.ToggleOption("status", "B"))
	def, _ := e.Draft().Get("status")
	assert.Equal(t, []string{"B"}, def.(*Checkbox).SelectedValues())

	require.NoError(t, e.ToggleOption("status", "B"))
	def, _ = e.Draft().Get("status")
	assert.Empty(t, def.(*Checkbox).SelectedValues())
}

func TestCheckboxSelectedValues_Deterministic(t *testing.T) {
	c := NewCheckbox(Meta{FilterBy: "category"}, "b", "a")
	c.Selected = map[string]bool{"z": true, "a": true, "b": true, "y": true, "x": false}
	assert.Equal(t, []string{"b", "a", "y", "z"}, c.SelectedValues())
}
