// Package domain 定义领域模型和接口
package domain

import (
	"time"

	"github.com/haierkeys/murverse-service/pkg/fragment"
)

// Fragment 碎片领域模型
type Fragment struct {
	ID         string
	UID        int64
	Content    string
	Type       fragment.Type
	Status     fragment.Status
	ParentID   string
	ChildIDs   []string
	Relations  []fragment.Relation
	Meta       *fragment.Meta
	Version    int64
	Creator    string
	LastEditor string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Tags 按插入顺序，原样保存
	Tags []string
	// Notes 按 Position 排序
	Notes []*Note
}

// Note 笔记领域模型，隶属于唯一的碎片
type Note struct {
	ID         string
	FragmentID string
	UID        int64
	Title      string
	Value      string
	Color      string
	IsPinned   bool
	Position   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsEmpty 标题和内容同时为空
func (n *Note) IsEmpty() bool {
	return fragment.Note{Title: n.Title, Value: n.Value}.IsEmpty()
}

// ToFragment converts the aggregate to the shared wire model.
func (f *Fragment) ToFragment() *fragment.Fragment {
	if f == nil {
		return nil
	}
	out := &fragment.Fragment{
		ID:         f.ID,
		Content:    f.Content,
		Type:       f.Type,
		Tags:       append([]string{}, f.Tags...),
		Notes:      make([]fragment.Note, 0, len(f.Notes)),
		Relations:  f.Relations,
		Meta:       f.Meta,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
		ParentID:   f.ParentID,
		ChildIDs:   f.ChildIDs,
		Version:    f.Version,
		Creator:    f.Creator,
		LastEditor: f.LastEditor,
		Status:     f.Status,
	}
	for _, n := range f.Notes {
		out.Notes = append(out.Notes, n.ToNote())
	}
	return out
}

// ToNote converts a note to the shared wire model.
func (n *Note) ToNote() fragment.Note {
	return fragment.Note{
		ID:        n.ID,
		Title:     n.Title,
		Value:     n.Value,
		Color:     n.Color,
		IsPinned:  n.IsPinned,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// FragmentFromWire builds an aggregate owned by uid from the wire model.
func FragmentFromWire(f *fragment.Fragment, uid int64) *Fragment {
	d := &Fragment{
		ID:         f.ID,
		UID:        uid,
		Content:    f.Content,
		Type:       f.Type,
		Status:     f.Status,
		ParentID:   f.ParentID,
		ChildIDs:   f.ChildIDs,
		Relations:  f.Relations,
		Meta:       f.Meta,
		Version:    f.Version,
		Creator:    f.Creator,
		LastEditor: f.LastEditor,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
		Tags:       fragment.NormalizeTags(f.Tags),
	}
	for i, n := range f.Notes {
		d.Notes = append(d.Notes, &Note{
			ID:         n.ID,
			FragmentID: f.ID,
			UID:        uid,
			Title:      n.Title,
			Value:      n.Value,
			Color:      n.Color,
			IsPinned:   n.IsPinned,
			Position:   i,
			CreatedAt:  n.CreatedAt,
			UpdatedAt:  n.UpdatedAt,
		})
	}
	return d
}
