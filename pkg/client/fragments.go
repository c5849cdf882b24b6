package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/haierkeys/murverse-service/pkg/fragment"
	"github.com/haierkeys/murverse-service/pkg/search"
)

// ListOptions maps onto the GET /api/fragments query string.
// ListOptions 碎片搜索条件
type ListOptions struct {
	Q            string
	Scopes       []string
	MatchMode    string
	TimeRange    string
	Start        string
	End          string
	Tags         []string
	ExcludedTags []string
	TagLogic     string
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("q", o.Q)
	set("matchMode", o.MatchMode)
	set("timeRange", o.TimeRange)
	set("start", o.Start)
	set("end", o.End)
	set("tagLogic", o.TagLogic)
	for _, s := range o.Scopes {
		v.Add("scopes", s)
	}
	for _, t := range o.Tags {
		v.Add("tags", t)
	}
	for _, t := range o.ExcludedTags {
		v.Add("excludedTags", t)
	}
	return v
}

// NoteInput is a note attached to a create request.
type NoteInput struct {
	Title    string `json:"title"`
	Value    string `json:"value"`
	Color    string `json:"color,omitempty"`
	IsPinned bool   `json:"isPinned"`
}

// CreateInput POST /api/fragments body
type CreateInput struct {
	Content   string              `json:"content"`
	Type      fragment.Type       `json:"type,omitempty"`
	Status    fragment.Status     `json:"status,omitempty"`
	Tags      []string            `json:"tags,omitempty"`
	Notes     []NoteInput         `json:"notes,omitempty"`
	ParentID  string              `json:"parentId,omitempty"`
	Relations []fragment.Relation `json:"relations,omitempty"`
	Meta      *fragment.Meta      `json:"meta,omitempty"`
}

// PartFailure is a tag or note row the server could not persist.
type PartFailure struct {
	Part  string `json:"part"`
	Index int    `json:"index"`
	Value string `json:"value"`
	Error string `json:"error"`
}

type CreateResult struct {
	Fragment *fragment.Fragment `json:"fragment"`
	Failed   []PartFailure      `json:"failed,omitempty"`
}

// NotePatch leaves nil fields unchanged.
type NotePatch struct {
	Title    *string `json:"title,omitempty"`
	Value    *string `json:"value,omitempty"`
	Color    *string `json:"color,omitempty"`
	IsPinned *bool   `json:"isPinned,omitempty"`
}

type upsertBody struct {
	Content     string              `json:"content"`
	Type        fragment.Type       `json:"type,omitempty"`
	Status      fragment.Status     `json:"status,omitempty"`
	Tags        []string            `json:"tags"`
	Notes       []fragment.Note     `json:"notes"`
	Relations   []fragment.Relation `json:"relations,omitempty"`
	Meta        *fragment.Meta      `json:"meta,omitempty"`
	ParentID    string              `json:"parentId,omitempty"`
	ChildIDs    []string            `json:"childIds,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	BaseVersion int64               `json:"baseVersion,omitempty"`
}

// FragmentRepository is the network repository for one user's fragments.
// FragmentRepository 基于 REST 接口的碎片仓库
type FragmentRepository struct {
	c *Client
}

// Fragments returns the fragment repository backed by c.
func (c *Client) Fragments() *FragmentRepository {
	return &FragmentRepository{c: c}
}

func fragmentPath(id string) string {
	return "/api/fragments/" + url.PathEscape(id)
}

func (r *FragmentRepository) List(ctx context.Context, opts ListOptions) ([]*fragment.Fragment, error) {
	var out []*fragment.Fragment
	if err := r.c.do(ctx, http.MethodGet, "/api/fragments", opts.values(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// All fetches the whole collection.
func (r *FragmentRepository) All(ctx context.Context) ([]*fragment.Fragment, error) {
	return r.List(ctx, ListOptions{})
}

func (r *FragmentRepository) Get(ctx context.Context, id string) (*fragment.Fragment, error) {
	var out fragment.Fragment
	if err := r.c.do(ctx, http.MethodGet, fragmentPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *FragmentRepository) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	var out CreateResult
	if err := r.c.do(ctx, http.MethodPost, "/api/fragments", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Upsert overwrites the fragment keyed by its id. A non-zero baseVersion asks
// the server to reject the write when the stored version moved on.
// Upsert 按 ID 覆盖写入，baseVersion 为 0 时后写覆盖
func (r *FragmentRepository) Upsert(ctx context.Context, f *fragment.Fragment, baseVersion int64) (*fragment.Fragment, error) {
	body := upsertBody{
		Content:     f.Content,
		Type:        f.Type,
		Status:      f.Status,
		Tags:        f.Tags,
		Notes:       f.Notes,
		Relations:   f.Relations,
		Meta:        f.Meta,
		ParentID:    f.ParentID,
		ChildIDs:    f.ChildIDs,
		CreatedAt:   f.CreatedAt,
		BaseVersion: baseVersion,
	}
	if body.Tags == nil {
		body.Tags = []string{}
	}
	if body.Notes == nil {
		body.Notes = []fragment.Note{}
	}
	var out fragment.Fragment
	if err := r.c.do(ctx, http.MethodPut, fragmentPath(f.ID), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Save is Upsert with last-write-wins.
func (r *FragmentRepository) Save(ctx context.Context, f *fragment.Fragment) error {
	_, err := r.Upsert(ctx, f, 0)
	return err
}

func (r *FragmentRepository) Delete(ctx context.Context, id string) error {
	return r.c.do(ctx, http.MethodDelete, fragmentPath(id), nil, nil, nil)
}

func (r *FragmentRepository) AddNote(ctx context.Context, fragmentID string, n NoteInput) (*fragment.Note, error) {
	var out fragment.Note
	if err := r.c.do(ctx, http.MethodPost, fragmentPath(fragmentID)+"/notes", nil, n, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *FragmentRepository) UpdateNote(ctx context.Context, fragmentID, noteID string, patch NotePatch) (*fragment.Note, error) {
	body := struct {
		NoteID string `json:"noteId"`
		NotePatch
	}{noteID, patch}
	var out fragment.Note
	if err := r.c.do(ctx, http.MethodPatch, fragmentPath(fragmentID)+"/notes", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *FragmentRepository) DeleteNote(ctx context.Context, fragmentID, noteID string) error {
	q := url.Values{"noteId": {noteID}}
	return r.c.do(ctx, http.MethodDelete, fragmentPath(fragmentID)+"/notes", q, nil, nil)
}

func (r *FragmentRepository) ReorderNotes(ctx context.Context, fragmentID string, noteIDs []string) (*fragment.Fragment, error) {
	body := struct {
		NoteIDs []string `json:"noteIds"`
	}{noteIDs}
	var out fragment.Fragment
	if err := r.c.do(ctx, http.MethodPut, fragmentPath(fragmentID)+"/notes/order", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddTag returns the fragment's tags after the change.
func (r *FragmentRepository) AddTag(ctx context.Context, fragmentID, tag string) ([]string, error) {
	body := struct {
		Tag string `json:"tag"`
	}{tag}
	var out []string
	if err := r.c.do(ctx, http.MethodPost, fragmentPath(fragmentID)+"/tags", nil, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *FragmentRepository) RemoveTag(ctx context.Context, fragmentID, tag string) ([]string, error) {
	var out []string
	if err := r.c.do(ctx, http.MethodDelete, fragmentPath(fragmentID)+"/tags/"+url.PathEscape(tag), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Tags GET /api/tags
func (r *FragmentRepository) Tags(ctx context.Context) ([]search.TagStat, error) {
	var out []search.TagStat
	if err := r.c.do(ctx, http.MethodGet, "/api/tags", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
