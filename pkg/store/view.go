package store

import (
	"github.com/haierkeys/murverse-service/pkg/fragment"
	"github.com/haierkeys/murverse-service/pkg/search"
)

// SetFilter replaces the whole filter state.
func (s *Store) SetFilter(q search.Query) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
}

// Filter returns the current filter state.
func (s *Store) Filter() search.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

func (s *Store) SetSearchQuery(text string) {
	s.mu.Lock()
	s.query.Text = text
	s.query.Tokens = nil
	s.mu.Unlock()
}

func (s *Store) SetSelectedTags(tags []string) {
	s.mu.Lock()
	s.query.SelectedTags = append([]string(nil), tags...)
	s.mu.Unlock()
}

func (s *Store) SetExcludedTags(tags []string) {
	s.mu.Lock()
	s.query.ExcludedTags = append([]string(nil), tags...)
	s.mu.Unlock()
}

func (s *Store) SetTagLogic(logic search.TagLogic) {
	s.mu.Lock()
	s.query.TagLogic = logic
	s.mu.Unlock()
}

// GetFilteredFragments runs the search engine over the current collection
// with the container's filter state.
// GetFilteredFragments 用容器自身的搜索条件过滤当前集合
func (s *Store) GetFilteredFragments() []*fragment.Fragment {
	s.mu.RLock()
	list := s.fragments
	q := s.query
	s.mu.RUnlock()

	if q.Now.IsZero() {
		q.Now = s.now()
	}
	return search.Filter(list, q)
}

// Visible is the full collection when no filter is active, the filtered
// result otherwise. An active filter with no match yields an empty slice.
func (s *Store) Visible() []*fragment.Fragment {
	if !s.Filter().IsActive() {
		return s.Snapshot().Fragments
	}
	return s.GetFilteredFragments()
}
