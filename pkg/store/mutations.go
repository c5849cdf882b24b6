package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/haierkeys/murverse-service/pkg/fragment"
)

var (
	ErrFragmentNotFound = errors.New("fragment not found")
	ErrContentEmpty     = errors.New("fragment content is empty")
	ErrNoteNotFound     = errors.New("note not found")
	ErrNoteEmpty        = errors.New("note title and value are both empty")
	ErrNoteOrder        = errors.New("note order must list every note exactly once")
	ErrTagEmpty         = errors.New("tag is empty")
	ErrTagExists        = errors.New("tag already exists on fragment")
	ErrTagNotFound      = errors.New("tag not found on fragment")
)

// NotePatch leaves nil fields unchanged.
type NotePatch struct {
	Title    *string
	Value    *string
	Color    *string
	IsPinned *bool
}

// mutate applies fn to a clone of the fragment with id, commits the new
// collection with updatedAt stamped and saves the changed fragment.
// 写时复制：克隆目标碎片、替换整个集合、刷新 updatedAt 后保存
func (s *Store) mutate(ctx context.Context, id string, fn func(f *fragment.Fragment) error) (*fragment.Fragment, SaveResult, error) {
	s.mu.Lock()
	idx := -1
	for i, f := range s.fragments {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return nil, SaveResult{}, ErrFragmentNotFound
	}

	next := s.fragments[idx].Clone()
	if err := fn(next); err != nil {
		s.mu.Unlock()
		return nil, SaveResult{}, err
	}
	next.UpdatedAt = s.now()

	list := make([]*fragment.Fragment, len(s.fragments))
	copy(list, s.fragments)
	list[idx] = next
	s.fragments = list
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	return next, s.saveFragments(ctx, []*fragment.Fragment{next}), nil
}

// AddFragment prepends f to the collection. Missing id, type and timestamps
// are filled in; tags are normalized.
func (s *Store) AddFragment(ctx context.Context, f *fragment.Fragment) (*fragment.Fragment, SaveResult, error) {
	if strings.TrimSpace(f.Content) == "" {
		return nil, SaveResult{}, ErrContentEmpty
	}
	for _, n := range f.Notes {
		if n.IsEmpty() {
			return nil, SaveResult{}, ErrNoteEmpty
		}
	}
	now := s.now()
	next := f.Clone()
	if next.ID == "" {
		next.ID = s.newID()
	}
	if next.Type == "" {
		next.Type = fragment.TypeFragment
	}
	if next.CreatedAt.IsZero() {
		next.CreatedAt = now
	}
	next.UpdatedAt = now
	next.Tags = fragment.NormalizeTags(next.Tags)
	for i := range next.Notes {
		if next.Notes[i].ID == "" {
			next.Notes[i].ID = s.newID()
		}
		if next.Notes[i].CreatedAt.IsZero() {
			next.Notes[i].CreatedAt = now
		}
		next.Notes[i].UpdatedAt = now
	}

	s.mu.Lock()
	list := make([]*fragment.Fragment, 0, len(s.fragments)+1)
	list = append(list, next)
	list = append(list, s.fragments...)
	s.fragments = list
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	return next, s.saveFragments(ctx, []*fragment.Fragment{next}), nil
}

// AddNoteToFragment appends n and returns it with its id.
func (s *Store) AddNoteToFragment(ctx context.Context, fragmentID string, n fragment.Note) (fragment.Note, SaveResult, error) {
	if n.IsEmpty() {
		return fragment.Note{}, SaveResult{}, ErrNoteEmpty
	}
	now := s.now()
	if n.ID == "" {
		n.ID = s.newID()
	}
	n.CreatedAt = now
	n.UpdatedAt = now

	_, res, err := s.mutate(ctx, fragmentID, func(f *fragment.Fragment) error {
		f.Notes = append(f.Notes, n)
		return nil
	})
	if err != nil {
		return fragment.Note{}, res, err
	}
	return n, res, nil
}

func (s *Store) UpdateNoteInFragment(ctx context.Context, fragmentID, noteID string, patch NotePatch) (SaveResult, error) {
	_, res, err := s.mutate(ctx, fragmentID, func(f *fragment.Fragment) error {
		i := f.NoteIndex(noteID)
		if i < 0 {
			return ErrNoteNotFound
		}
		n := f.Notes[i]
		if patch.Title != nil {
			n.Title = *patch.Title
		}
		if patch.Value != nil {
			n.Value = *patch.Value
		}
		if patch.Color != nil {
			n.Color = *patch.Color
		}
		if patch.IsPinned != nil {
			n.IsPinned = *patch.IsPinned
		}
		if n.IsEmpty() {
			return ErrNoteEmpty
		}
		n.UpdatedAt = s.now()
		f.Notes[i] = n
		return nil
	})
	return res, err
}

func (s *Store) RemoveNoteFromFragment(ctx context.Context, fragmentID, noteID string) (SaveResult, error) {
	_, res, err := s.mutate(ctx, fragmentID, func(f *fragment.Fragment) error {
		i := f.NoteIndex(noteID)
		if i < 0 {
			return ErrNoteNotFound
		}
		f.Notes = append(f.Notes[:i], f.Notes[i+1:]...)
		return nil
	})
	return res, err
}

// ReorderNotesInFragment noteIDs must be a permutation of the current note ids.
func (s *Store) ReorderNotesInFragment(ctx context.Context, fragmentID string, noteIDs []string) (SaveResult, error) {
	_, res, err := s.mutate(ctx, fragmentID, func(f *fragment.Fragment) error {
		if len(noteIDs) != len(f.Notes) {
			return ErrNoteOrder
		}
		ordered := make([]fragment.Note, 0, len(noteIDs))
		seen := make(map[string]struct{}, len(noteIDs))
		for _, id := range noteIDs {
			if _, dup := seen[id]; dup {
				return ErrNoteOrder
			}
			seen[id] = struct{}{}
			i := f.NoteIndex(id)
			if i < 0 {
				return ErrNoteOrder
			}
			ordered = append(ordered, f.Notes[i])
		}
		f.Notes = ordered
		return nil
	})
	return res, err
}

// AddTagToFragment rejects a tag already present under case folding.
func (s *Store) AddTagToFragment(ctx context.Context, fragmentID, tag string) (SaveResult, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return SaveResult{}, ErrTagEmpty
	}
	_, res, err := s.mutate(ctx, fragmentID, func(f *fragment.Fragment) error {
		if f.HasTag(tag) {
			return ErrTagExists
		}
		f.Tags = append(f.Tags, tag)
		return nil
	})
	return res, err
}

func (s *Store) RemoveTagFromFragment(ctx context.Context, fragmentID, tag string) (SaveResult, error) {
	key := fragment.TagKey(tag)
	if key == "" {
		return SaveResult{}, ErrTagEmpty
	}
	_, res, err := s.mutate(ctx, fragmentID, func(f *fragment.Fragment) error {
		kept := f.Tags[:0]
		for _, t := range f.Tags {
			if fragment.TagKey(t) != key {
				kept = append(kept, t)
			}
		}
		if len(kept) == len(f.Tags) {
			return ErrTagNotFound
		}
		f.Tags = kept
		return nil
	})
	return res, err
}
