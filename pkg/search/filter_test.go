package search

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haierkeys/murverse-service/pkg/fragment"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func frag(id, content string, tags ...string) *fragment.Fragment {
	return &fragment.Fragment{ID: id, Content: content, Tags: tags, UpdatedAt: testNow}
}

func ids(fs []*fragment.Fragment) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.ID)
	}
	return out
}

func TestFilter_TagLogic(t *testing.T) {
	all := []*fragment.Fragment{
		frag("A", "a", "x", "y"),
		frag("B", "b", "x"),
		frag("C", "c", "y"),
	}

	tests := []struct {
		name     string
		selected []string
		excluded []string
		logic    TagLogic
		want     []string
	}{
		{name: "AND needs every tag", selected: []string{"x", "y"}, logic: TagLogicAnd, want: []string{"A"}},
		{name: "OR needs one tag", selected: []string{"x", "y"}, logic: TagLogicOr, want: []string{"A", "B", "C"}},
		{name: "default logic is AND", selected: []string{"x", "y"}, want: []string{"A"}},
		{name: "no selection passes", want: []string{"A", "B", "C"}},
		{name: "exclusion dominates OR", selected: []string{"x"}, excluded: []string{"y"}, logic: TagLogicOr, want: []string{"B"}},
		{name: "exclusion dominates AND", selected: []string{"x", "y"}, excluded: []string{"y"}, logic: TagLogicAnd, want: []string{}},
		{name: "tags compare case-insensitively", selected: []string{" X "}, logic: TagLogicAnd, want: []string{"A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(all, Query{SelectedTags: tt.selected, ExcludedTags: tt.excluded, TagLogic: tt.logic, Now: testNow})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilter_Text(t *testing.T) {
	withNote := frag("N", "grocery list", "errand")
	withNote.Notes = []fragment.Note{{ID: "n1", Title: "Dairy", Value: "milk and cheese"}}

	all := []*fragment.Fragment{
		frag("A", "Buy milk", "errand"),
		frag("B", "Call mom", "family"),
		frag("C", "milkshake recipe", "food"),
		withNote,
	}

	tests := []struct {
		name   string
		text   string
		scopes []Scope
		mode   MatchMode
		want   []string
	}{
		{name: "substring across scopes", text: "milk", want: []string{"A", "C", "N"}},
		{name: "case-insensitive", text: "MILK", want: []string{"A", "C", "N"}},
		{name: "fragment scope only", text: "milk", scopes: []Scope{ScopeFragment}, want: []string{"A", "C"}},
		{name: "note scope only", text: "milk", scopes: []Scope{ScopeNote}, want: []string{"N"}},
		{name: "tag scope only", text: "err", scopes: []Scope{ScopeTag}, want: []string{"A", "N"}},
		{name: "prefix", text: "milk", mode: MatchPrefix, scopes: []Scope{ScopeFragment}, want: []string{"C"}},
		{name: "exact", text: "call mom", mode: MatchExact, scopes: []Scope{ScopeFragment}, want: []string{}},
		{name: "exact phrase", text: "'call mom'", mode: MatchExact, scopes: []Scope{ScopeFragment}, want: []string{"B"}},
		{name: "exact tag membership", text: "errand", mode: MatchExact, scopes: []Scope{ScopeTag}, want: []string{"A", "N"}},
		{name: "plain tokens are ANDed", text: "milk recipe", want: []string{"C"}},
		{name: "include", text: "+errand", want: []string{"A", "N"}},
		{name: "exclude", text: "milk -errand", want: []string{"C"}},
		{name: "or unions with plain", text: "recipe OR mom", want: []string{"B", "C"}},
		{name: "or alone", text: "OR mom", want: []string{"B"}},
		{name: "include plus or", text: "+errand buy OR cheese", want: []string{"A", "N"}},
		{name: "wildcard matches like text", text: "*shake", want: []string{"C"}},
		{name: "no hit", text: "zebra", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(all, Query{Text: tt.text, Scopes: tt.scopes, MatchMode: tt.mode, Now: testNow})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilter_TimeRange(t *testing.T) {
	loc := time.UTC
	at := func(id string, ts time.Time) *fragment.Fragment {
		f := frag(id, id)
		f.UpdatedAt = ts
		return f
	}
	all := []*fragment.Fragment{
		at("today-early", time.Date(2024, 6, 15, 0, 0, 1, 0, loc)),
		at("yesterday-late", time.Date(2024, 6, 14, 23, 59, 59, 0, loc)),
		at("six-days", testNow.Add(-6*24*time.Hour)),
		at("eight-days", testNow.Add(-8*24*time.Hour)),
		at("twenty-nine-days", testNow.Add(-29*24*time.Hour)),
		at("forty-days", testNow.Add(-40*24*time.Hour)),
	}

	start := time.Date(2024, 6, 14, 23, 59, 59, 0, loc)
	end := time.Date(2024, 6, 15, 0, 0, 1, 0, loc)

	tests := []struct {
		name  string
		rng   TimeRange
		start *time.Time
		end   *time.Time
		want  []string
	}{
		{name: "all", rng: RangeAll, want: ids(all)},
		{name: "today", rng: RangeToday, want: []string{"today-early"}},
		{name: "yesterday", rng: RangeYesterday, want: []string{"yesterday-late"}},
		{name: "week", rng: RangeWeek, want: []string{"today-early", "yesterday-late", "six-days"}},
		{name: "month", rng: RangeMonth, want: []string{"today-early", "yesterday-late", "six-days", "eight-days", "twenty-nine-days"}},
		{name: "custom inclusive", rng: RangeCustom, start: &start, end: &end, want: []string{"today-early", "yesterday-late"}},
		{name: "custom open end", rng: RangeCustom, start: &end, want: []string{"today-early"}},
		{name: "custom open start", rng: RangeCustom, end: &start, want: []string{"yesterday-late", "six-days", "eight-days", "twenty-nine-days", "forty-days"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(all, Query{TimeRange: tt.rng, Start: tt.start, End: tt.end, Now: testNow, Location: loc})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilter_CalendarDaysUseLocation(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	// 2024-06-14 20:00 UTC is already 2024-06-15 in UTC+8
	f := frag("late", "late")
	f.UpdatedAt = time.Date(2024, 6, 14, 20, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, shanghai)

	got := Filter([]*fragment.Fragment{f}, Query{TimeRange: RangeToday, Now: now, Location: shanghai})
	assert.Len(t, got, 1)

	got = Filter([]*fragment.Fragment{f}, Query{TimeRange: RangeToday, Now: now, Location: time.UTC})
	assert.Len(t, got, 0)
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	all := []*fragment.Fragment{frag("A", "one", "x"), frag("B", "two", "y")}
	before := []*fragment.Fragment{all[0].Clone(), all[1].Clone()}

	_ = Filter(all, Query{Text: "one", SelectedTags: []string{"x"}, Now: testNow})

	assert.Equal(t, before, all)
}

func TestQuery_IsActive(t *testing.T) {
	assert.False(t, Query{}.IsActive())
	assert.False(t, Query{Text: "   ", TimeRange: RangeAll}.IsActive())
	assert.True(t, Query{Text: "milk"}.IsActive())
	assert.True(t, Query{SelectedTags: []string{"x"}}.IsActive())
	assert.True(t, Query{ExcludedTags: []string{"x"}}.IsActive())
	assert.True(t, Query{TimeRange: RangeToday}.IsActive())
}

func TestParseTimeBound(t *testing.T) {
	got, err := ParseTimeBound("2024-03-01", time.UTC)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	got, err = ParseTimeBound("", time.UTC)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseTimeBound("not a date", time.UTC)
	assert.Error(t, err)
}

func TestParseTimeEnd_DateCoversWholeDay(t *testing.T) {
	end, err := ParseTimeEnd("2024-03-01", time.UTC)
	require.NoError(t, err)
	require.NotNil(t, end)
	assert.True(t, end.Equal(time.Date(2024, 3, 1, 23, 59, 59, 999999999, time.UTC)))

	end, err = ParseTimeEnd("2024-03-01 10:30", time.UTC)
	require.NoError(t, err)
	assert.True(t, end.Equal(time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)))

	end, err = ParseTimeEnd("2024-03-01 00:00:00", time.UTC)
	require.NoError(t, err)
	assert.True(t, end.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	end, err = ParseTimeEnd("", time.UTC)
	require.NoError(t, err)
	assert.Nil(t, end)

	_, err = ParseTimeEnd("not a date", time.UTC)
	assert.Error(t, err)

	// 结束日期当天下午更新的碎片仍在范围内
	start, err := ParseTimeBound("2024-03-01", time.UTC)
	require.NoError(t, err)
	end, err = ParseTimeEnd("2024-03-01", time.UTC)
	require.NoError(t, err)
	in := timeWindow(Query{TimeRange: RangeCustom, Start: start, End: end, Location: time.UTC})
	assert.True(t, in(time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)))
	assert.False(t, in(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)))
}

func TestFilter_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	tagNames := []string{"x", "y", "z"}
	genTag := gen.IntRange(0, len(tagNames)-1).Map(func(i int) string { return tagNames[i] })
	genFragments := gen.SliceOf(gen.SliceOf(genTag)).Map(func(tagSets [][]string) []*fragment.Fragment {
		out := make([]*fragment.Fragment, len(tagSets))
		for i, tags := range tagSets {
			out[i] = frag(string(rune('a'+i%26)), "c", tags...)
		}
		return out
	})

	properties.Property("an empty query keeps everything", prop.ForAll(
		func(all []*fragment.Fragment) bool {
			return len(Filter(all, Query{Now: testNow})) == len(all)
		},
		genFragments,
	))

	properties.Property("result preserves input order", prop.ForAll(
		func(all []*fragment.Fragment, tag string) bool {
			got := Filter(all, Query{SelectedTags: []string{tag}, Now: testNow})
			j := 0
			for _, f := range all {
				if j < len(got) && got[j] == f {
					j++
				}
			}
			return j == len(got)
		},
		genFragments,
		genTag,
	))

	properties.Property("no survivor carries an excluded tag", prop.ForAll(
		func(all []*fragment.Fragment, tag string) bool {
			for _, f := range Filter(all, Query{SelectedTags: []string{"x", "y", "z"}, TagLogic: TagLogicOr, ExcludedTags: []string{tag}, Now: testNow}) {
				if f.HasTag(tag) {
					return false
				}
			}
			return true
		},
		genFragments,
		genTag,
	))

	properties.TestingRun(t)
}
