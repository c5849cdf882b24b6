package search

import (
	"strings"
	"time"

	"github.com/haierkeys/murverse-service/pkg/fragment"
)

// Scope 搜索范围
type Scope string

const (
	ScopeFragment Scope = "fragment"
	ScopeNote     Scope = "note"
	ScopeTag      Scope = "tag"
)

// AllScopes is used when a query names no scope.
var AllScopes = []Scope{ScopeFragment, ScopeNote, ScopeTag}

// MatchMode 匹配模式
type MatchMode string

const (
	MatchExact     MatchMode = "exact"
	MatchPrefix    MatchMode = "prefix"
	MatchSubstring MatchMode = "substring"
)

// TimeRange 时间范围
type TimeRange string

const (
	RangeAll       TimeRange = "all"
	RangeToday     TimeRange = "today"
	RangeYesterday TimeRange = "yesterday"
	RangeWeek      TimeRange = "week"
	RangeMonth     TimeRange = "month"
	RangeCustom    TimeRange = "custom"
)

// TagLogic 标签组合逻辑
type TagLogic string

const (
	TagLogicAnd TagLogic = "AND"
	TagLogicOr  TagLogic = "OR"
)

// Query describes one filtered view over a fragment collection.
type Query struct {
	// Text is tokenized with MatchMode when Tokens is nil.
	Text   string
	Tokens []Token

	Scopes    []Scope
	MatchMode MatchMode

	TimeRange TimeRange
	// Start and End bound RangeCustom inclusively; nil means open.
	Start *time.Time
	End   *time.Time

	SelectedTags []string
	ExcludedTags []string
	TagLogic     TagLogic

	// Now and Location pin the clock; zero values use time.Now and time.Local.
	Now      time.Time
	Location *time.Location
}

// IsActive reports whether any filter dimension is set, so callers can tell
// "no search" apart from "search with no results".
// IsActive 判断是否存在任何过滤条件
func (q Query) IsActive() bool {
	if strings.TrimSpace(q.Text) != "" || len(q.Tokens) > 0 {
		return true
	}
	if len(q.SelectedTags) > 0 || len(q.ExcludedTags) > 0 {
		return true
	}
	return q.TimeRange != "" && q.TimeRange != RangeAll
}

type compiled struct {
	include, exclude, plain, or []string
	scopes                      map[Scope]bool
	mode                        MatchMode
	selected, excluded          map[string]struct{}
	and                         bool
	inWindow                    func(time.Time) bool
}

func compile(q Query) compiled {
	mode := q.MatchMode
	if mode == "" {
		mode = MatchSubstring
	}
	c := compiled{mode: mode, scopes: map[Scope]bool{}, and: q.TagLogic != TagLogicOr}

	scopes := q.Scopes
	if len(scopes) == 0 {
		scopes = AllScopes
	}
	for _, s := range scopes {
		c.scopes[s] = true
	}

	tokens := q.Tokens
	if tokens == nil {
		tokens = Tokenize(q.Text, mode)
	}
	for _, t := range tokens {
		v := fragment.Fold(strings.TrimSpace(t.Value))
		if v == "" {
			continue
		}
		switch t.Type {
		case TokenInclude:
			c.include = append(c.include, v)
		case TokenExclude:
			c.exclude = append(c.exclude, v)
		case TokenOr:
			c.or = append(c.or, v)
		default:
			c.plain = append(c.plain, v)
		}
	}

	c.selected = tagSet(q.SelectedTags)
	c.excluded = tagSet(q.ExcludedTags)
	c.inWindow = timeWindow(q)
	return c
}

func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if k := fragment.TagKey(t); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

// Filter returns the fragments accepted by every active dimension of q, in
// input order. It does not modify its input.
// Filter 纯函数：按文本、标签、时间过滤并保持原有顺序
func Filter(fragments []*fragment.Fragment, q Query) []*fragment.Fragment {
	c := compile(q)
	out := make([]*fragment.Fragment, 0, len(fragments))
	for _, f := range fragments {
		if f != nil && c.accept(f) {
			out = append(out, f)
		}
	}
	return out
}

// Match reports whether a single fragment passes q.
func Match(f *fragment.Fragment, q Query) bool {
	return compile(q).accept(f)
}

func (c compiled) accept(f *fragment.Fragment) bool {
	keys := make([]string, len(f.Tags))
	for i, t := range f.Tags {
		keys[i] = fragment.TagKey(t)
	}
	return c.acceptTags(keys) && c.inWindow(f.UpdatedAt) && c.acceptText(f, keys)
}

func (c compiled) acceptTags(keys []string) bool {
	// 排除标签优先于任何包含逻辑
	for _, k := range keys {
		if _, ok := c.excluded[k]; ok {
			return false
		}
	}
	if len(c.selected) == 0 {
		return true
	}
	hit := 0
	for k := range c.selected {
		for _, fk := range keys {
			if fk == k {
				hit++
				break
			}
		}
	}
	if c.and {
		return hit == len(c.selected)
	}
	return hit > 0
}

func (c compiled) acceptText(f *fragment.Fragment, keys []string) bool {
	var fields []string
	if c.scopes[ScopeFragment] {
		fields = append(fields, fragment.Fold(f.Content))
	}
	if c.scopes[ScopeNote] {
		for _, n := range f.Notes {
			fields = append(fields, fragment.Fold(n.Title), fragment.Fold(n.Value))
		}
	}
	if c.scopes[ScopeTag] {
		fields = append(fields, keys...)
	}

	matchAny := func(term string) bool {
		for _, field := range fields {
			if c.matches(field, term) {
				return true
			}
		}
		return false
	}

	for _, term := range c.exclude {
		if matchAny(term) {
			return false
		}
	}
	for _, term := range c.include {
		if !matchAny(term) {
			return false
		}
	}

	if len(c.plain) == 0 && len(c.or) == 0 {
		return true
	}
	plainOK := len(c.plain) > 0
	for _, term := range c.plain {
		if !matchAny(term) {
			plainOK = false
			break
		}
	}
	if plainOK {
		return true
	}
	for _, term := range c.or {
		if matchAny(term) {
			return true
		}
	}
	return false
}

func (c compiled) matches(field, term string) bool {
	switch c.mode {
	case MatchExact:
		return field == term
	case MatchPrefix:
		return strings.HasPrefix(field, term)
	default:
		return strings.Contains(field, term)
	}
}
