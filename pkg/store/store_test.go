package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haierkeys/murverse-service/pkg/fragcache"
	"github.com/haierkeys/murverse-service/pkg/fragment"
	"github.com/haierkeys/murverse-service/pkg/search"
)

var errBackend = errors.New("backend down")

type fakeRepo struct {
	mu       sync.Mutex
	data     []*fragment.Fragment
	fetchErr error
	failIDs  map[string]bool
	saved    map[string]*fragment.Fragment
	fetches  int
	release  chan struct{}
}

func newFakeRepo(data ...*fragment.Fragment) *fakeRepo {
	return &fakeRepo{data: data, failIDs: map[string]bool{}, saved: map[string]*fragment.Fragment{}}
}

func (r *fakeRepo) All(ctx context.Context) ([]*fragment.Fragment, error) {
	if r.release != nil {
		<-r.release
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches++
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	return append([]*fragment.Fragment(nil), r.data...), nil
}

func (r *fakeRepo) Save(ctx context.Context, f *fragment.Fragment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failIDs[f.ID] {
		return errBackend
	}
	r.saved[f.ID] = f
	return nil
}

func (r *fakeRepo) savedCopy(id string) *fragment.Fragment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved[id]
}

var t0 = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() func() time.Time { return func() time.Time { return t0 } }

func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newCache() *fragcache.Store {
	return fragcache.New(fragcache.NewMemoryBackend(0), fragcache.WithClock(fixedClock()))
}

func TestLoad_CacheThenNetwork(t *testing.T) {
	cache := newCache()
	require.NoError(t, cache.Set("u1", []*fragment.Fragment{{ID: "old", Content: "stale"}}, time.Minute))

	repo := newFakeRepo(&fragment.Fragment{ID: "new", Content: "fresh"})
	repo.release = make(chan struct{})

	var mu sync.Mutex
	var seen []Provenance
	s := New("u1", repo, WithCache(cache, time.Minute), WithClock(fixedClock()), WithListener(func(snap Snapshot) {
		mu.Lock()
		seen = append(seen, snap.Provenance)
		mu.Unlock()
	}))

	require.NoError(t, s.Load(context.Background()))
	snap := s.Snapshot()
	assert.Equal(t, ProvenanceCache, snap.Provenance)
	assert.Equal(t, StatusReady, snap.Status)
	require.Len(t, snap.Fragments, 1)
	assert.Equal(t, "old", snap.Fragments[0].ID)

	close(repo.release)
	s.Wait()

	snap = s.Snapshot()
	assert.Equal(t, ProvenanceNetwork, snap.Provenance)
	assert.Equal(t, "new", snap.Fragments[0].ID)
	assert.Equal(t, []Provenance{ProvenanceCache, ProvenanceNetwork}, seen)

	cached, ok := cache.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "new", cached[0].ID)
}

func TestLoad_MissShowsLoading(t *testing.T) {
	repo := newFakeRepo(&fragment.Fragment{ID: "a", Content: "x"})

	var statuses []Status
	s := New("u1", repo, WithCache(newCache(), time.Minute), WithListener(func(snap Snapshot) {
		statuses = append(statuses, snap.Status)
	}))

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, []Status{StatusLoading, StatusReady}, statuses)
	assert.Equal(t, ProvenanceNetwork, s.Snapshot().Provenance)
}

func TestLoad_ErrorRecorded(t *testing.T) {
	repo := newFakeRepo()
	repo.fetchErr = errBackend
	s := New("u1", repo)

	err := s.Load(context.Background())
	require.ErrorIs(t, err, errBackend)

	snap := s.Snapshot()
	assert.Equal(t, StatusError, snap.Status)
	assert.Equal(t, errBackend.Error(), snap.Err)
	assert.Equal(t, 1, repo.fetches, "no automatic retry")
}

func TestSave_PartialFailure(t *testing.T) {
	repo := newFakeRepo(
		&fragment.Fragment{ID: "a", Content: "1"},
		&fragment.Fragment{ID: "b", Content: "2"},
		&fragment.Fragment{ID: "c", Content: "3"},
	)
	repo.failIDs["b"] = true
	s := New("u1", repo, WithSaveConcurrency(2))
	require.NoError(t, s.Load(context.Background()))

	res := s.Save(context.Background())
	assert.False(t, res.OK())
	assert.Equal(t, []string{"a", "c"}, res.Saved)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "b", res.Failed[0].ID)
	assert.ErrorIs(t, res.Failed[0].Err, errBackend)
	assert.NotEmpty(t, s.Snapshot().Err)
}

func loaded(t *testing.T, repo *fakeRepo) *Store {
	t.Helper()
	s := New("u1", repo, WithClock(fixedClock()), WithIDGenerator(seqIDs()))
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestMutations_CopyOnWrite(t *testing.T) {
	orig := &fragment.Fragment{ID: "f", Content: "buy milk", Tags: []string{"shop"}}
	repo := newFakeRepo(orig)
	s := loaded(t, repo)
	before := s.Snapshot().Fragments

	note, res, err := s.AddNoteToFragment(context.Background(), "f", fragment.Note{Title: "2L"})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, "id-1", note.ID)

	assert.Empty(t, orig.Notes, "previous value untouched")
	assert.Same(t, orig, before[0])

	after := s.Snapshot().Fragments[0]
	assert.NotSame(t, orig, after)
	assert.Equal(t, t0, after.UpdatedAt)
	require.Len(t, after.Notes, 1)
	assert.Equal(t, "2L", repo.savedCopy("f").Notes[0].Title)
}

func TestMutations_Notes(t *testing.T) {
	repo := newFakeRepo(&fragment.Fragment{ID: "f", Content: "x", Notes: []fragment.Note{
		{ID: "n1", Title: "one"}, {ID: "n2", Title: "two"}, {ID: "n3", Title: "three"},
	}})
	s := loaded(t, repo)
	ctx := context.Background()

	_, _, err := s.AddNoteToFragment(ctx, "f", fragment.Note{Title: "  ", Value: ""})
	assert.ErrorIs(t, err, ErrNoteEmpty)

	title := "uno"
	_, err = s.UpdateNoteInFragment(ctx, "f", "n1", NotePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "uno", s.Snapshot().Fragments[0].Notes[0].Title)

	_, err = s.UpdateNoteInFragment(ctx, "f", "missing", NotePatch{Title: &title})
	assert.ErrorIs(t, err, ErrNoteNotFound)

	_, err = s.ReorderNotesInFragment(ctx, "f", []string{"n3", "n1", "n2"})
	require.NoError(t, err)
	ids := []string{}
	for _, n := range s.Snapshot().Fragments[0].Notes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"n3", "n1", "n2"}, ids)

	_, err = s.ReorderNotesInFragment(ctx, "f", []string{"n3", "n3", "n2"})
	assert.ErrorIs(t, err, ErrNoteOrder)

	_, err = s.RemoveNoteFromFragment(ctx, "f", "n1")
	require.NoError(t, err)
	assert.Len(t, s.Snapshot().Fragments[0].Notes, 2)

	_, err = s.RemoveNoteFromFragment(ctx, "nope", "n1")
	assert.ErrorIs(t, err, ErrFragmentNotFound)
}

func TestMutations_Tags(t *testing.T) {
	repo := newFakeRepo(&fragment.Fragment{ID: "f", Content: "x", Tags: []string{"Shop"}})
	s := loaded(t, repo)
	ctx := context.Background()

	_, err := s.AddTagToFragment(ctx, "f", "shop")
	assert.ErrorIs(t, err, ErrTagExists)

	_, err = s.AddTagToFragment(ctx, "f", "  home ")
	require.NoError(t, err)
	assert.Equal(t, []string{"Shop", "home"}, s.Snapshot().Fragments[0].Tags)

	_, err = s.RemoveTagFromFragment(ctx, "f", "SHOP")
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, s.Snapshot().Fragments[0].Tags)

	_, err = s.RemoveTagFromFragment(ctx, "f", "shop")
	assert.ErrorIs(t, err, ErrTagNotFound)
}

func TestAddFragment_PrependsAndSaves(t *testing.T) {
	repo := newFakeRepo(&fragment.Fragment{ID: "old", Content: "x"})
	s := loaded(t, repo)

	f, res, err := s.AddFragment(context.Background(), &fragment.Fragment{Content: "buy milk", Tags: []string{"a", " A ", ""}})
	require.NoError(t, err)
	assert.Equal(t, []string{"id-1"}, res.Saved)
	assert.Equal(t, fragment.TypeFragment, f.Type)
	assert.Equal(t, []string{"a"}, f.Tags)
	assert.Equal(t, "id-1", s.Snapshot().Fragments[0].ID)

	_, _, err = s.AddFragment(context.Background(), &fragment.Fragment{Content: " "})
	assert.ErrorIs(t, err, ErrContentEmpty)
}

func TestAddFragment_RejectsEmptyNote(t *testing.T) {
	repo := newFakeRepo(&fragment.Fragment{ID: "old", Content: "x"})
	s := loaded(t, repo)

	_, res, err := s.AddFragment(context.Background(), &fragment.Fragment{
		Content: "buy milk",
		Notes:   []fragment.Note{{Title: "where", Value: "corner shop"}, {Title: " ", Value: ""}},
	})
	assert.ErrorIs(t, err, ErrNoteEmpty)
	assert.Empty(t, res.Saved)

	snap := s.Snapshot()
	require.Len(t, snap.Fragments, 1)
	assert.Equal(t, "old", snap.Fragments[0].ID)
	assert.Nil(t, repo.savedCopy("id-1"))
}

func TestMutation_SaveFailureKeepsState(t *testing.T) {
	repo := newFakeRepo(&fragment.Fragment{ID: "f", Content: "x"})
	repo.failIDs["f"] = true
	s := loaded(t, repo)

	res, err := s.AddTagToFragment(context.Background(), "f", "urgent")
	require.NoError(t, err)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, []string{"urgent"}, s.Snapshot().Fragments[0].Tags, "no rollback")
}

func TestVisible(t *testing.T) {
	repo := newFakeRepo(
		&fragment.Fragment{ID: "a", Content: "buy milk", Tags: []string{"x", "y"}, UpdatedAt: t0},
		&fragment.Fragment{ID: "b", Content: "walk dog", Tags: []string{"x"}, UpdatedAt: t0},
		&fragment.Fragment{ID: "c", Content: "call mom", Tags: []string{"y"}, UpdatedAt: t0},
	)
	s := loaded(t, repo)

	assert.Len(t, s.Visible(), 3)

	s.SetSelectedTags([]string{"x", "y"})
	s.SetTagLogic(search.TagLogicAnd)
	ids := func(list []*fragment.Fragment) []string {
		out := []string{}
		for _, f := range list {
			out = append(out, f.ID)
		}
		return out
	}
	assert.Equal(t, []string{"a"}, ids(s.Visible()))

	s.SetTagLogic(search.TagLogicOr)
	assert.Equal(t, []string{"a", "b", "c"}, ids(s.GetFilteredFragments()))

	s.SetSelectedTags(nil)
	s.SetSearchQuery("nothing-matches")
	visible := s.Visible()
	assert.NotNil(t, visible)
	assert.Empty(t, visible)
}
