// Package fragment holds the fragment data model shared by the server, the
// client SDK and the search engine.
package fragment

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Type 碎片类型
type Type string

const (
	TypeFragment   Type = "fragment"
	TypeTag        Type = "tag"
	TypeMeta       Type = "meta"
	TypeSystem     Type = "system"
	TypeGroup      Type = "group"
	TypeTemplate   Type = "template"
	TypeCollection Type = "collection"
)

var types = []Type{TypeFragment, TypeTag, TypeMeta, TypeSystem, TypeGroup, TypeTemplate, TypeCollection}

// Valid reports whether t is a known type. The empty type is not valid; callers default it first.
func (t Type) Valid() bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}

// Status 碎片状态
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case "", StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// RelationType 关系类型
type RelationType string

const (
	RelationReference RelationType = "reference"
	RelationParent    RelationType = "parent"
	RelationChild     RelationType = "child"
	RelationSimilar   RelationType = "similar"
	RelationRelated   RelationType = "related"
)

// Relation is a typed edge to another fragment.
type Relation struct {
	TargetID      string       `json:"targetId"`
	Type          RelationType `json:"type"`
	Weight        *float64     `json:"weight,omitempty"`
	Bidirectional bool         `json:"bidirectional"`
}

// Meta 碎片元数据标记
type Meta struct {
	Archived  bool `json:"archived"`
	Pinned    bool `json:"pinned"`
	Favorite  bool `json:"favorite"`
	Priority  int  `json:"priority,omitempty"`
	ViewCount int  `json:"viewCount"`
	EditCount int  `json:"editCount"`
}

// Note is an annotation owned by exactly one fragment.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Value     string    `json:"value"`
	Color     string    `json:"color,omitempty"`
	IsPinned  bool      `json:"isPinned"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsEmpty reports whether both title and value are blank, which makes the note invalid.
// 标题与内容同时为空的笔记无效
func (n Note) IsEmpty() bool {
	return strings.TrimSpace(n.Title) == "" && strings.TrimSpace(n.Value) == ""
}

// Fragment 碎片
type Fragment struct {
	ID         string     `json:"id"`
	Content    string     `json:"content"`
	Type       Type       `json:"type"`
	Tags       []string   `json:"tags"`
	Notes      []Note     `json:"notes"`
	Relations  []Relation `json:"relations,omitempty"`
	Meta       *Meta      `json:"meta,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	ParentID   string     `json:"parentId,omitempty"`
	ChildIDs   []string   `json:"childIds,omitempty"`
	Version    int64      `json:"version"`
	Creator    string     `json:"creator,omitempty"`
	LastEditor string     `json:"lastEditor,omitempty"`
	Status     Status     `json:"status,omitempty"`
}

// Clone returns a deep copy, so copy-on-write updates never alias the original.
func (f *Fragment) Clone() *Fragment {
	if f == nil {
		return nil
	}
	c := *f
	c.Tags = append([]string(nil), f.Tags...)
	c.Notes = append([]Note(nil), f.Notes...)
	c.ChildIDs = append([]string(nil), f.ChildIDs...)
	if f.Relations != nil {
		c.Relations = make([]Relation, len(f.Relations))
		for i, r := range f.Relations {
			c.Relations[i] = r
			if r.Weight != nil {
				w := *r.Weight
				c.Relations[i].Weight = &w
			}
		}
	}
	if f.Meta != nil {
		m := *f.Meta
		c.Meta = &m
	}
	return &c
}

// HasTag reports membership using the folded tag key.
func (f *Fragment) HasTag(tag string) bool {
	key := TagKey(tag)
	for _, t := range f.Tags {
		if TagKey(t) == key {
			return true
		}
	}
	return false
}

// NoteIndex returns the position of the note with id, or -1.
func (f *Fragment) NoteIndex(id string) int {
	for i := range f.Notes {
		if f.Notes[i].ID == id {
			return i
		}
	}
	return -1
}

// Fold 返回用于不区分大小写比较的折叠字符串
// Fold returns the Unicode case-folded form used for every case-insensitive comparison.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// TagKey is the canonical comparison key of a tag: trimmed and case-folded.
// 标签按原样存储，比较和去重统一使用折叠后的 key
func TagKey(tag string) string {
	return Fold(strings.TrimSpace(tag))
}

// NormalizeTags trims, drops empties and removes case-insensitive duplicates,
// keeping the first spelling and the insertion order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := Fold(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
