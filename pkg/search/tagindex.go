package search

import (
	"sort"

	"github.com/haierkeys/murverse-service/pkg/fragment"
)

// TagStat is one entry of the tag index.
type TagStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TagIndex aggregates tag usage over a fragment collection. Tags are keyed by
// their folded form; Name is the first spelling seen.
// TagIndex 标签索引：使用次数与共现次数
type TagIndex struct {
	names    map[string]string
	counts   map[string]int
	cooccurs map[string]map[string]int
	order    []string
}

// BuildTagIndex indexes fragments in input order.
func BuildTagIndex(fragments []*fragment.Fragment) *TagIndex {
	idx := &TagIndex{
		names:    map[string]string{},
		counts:   map[string]int{},
		cooccurs: map[string]map[string]int{},
	}
	for _, f := range fragments {
		if f == nil {
			continue
		}
		tags := fragment.NormalizeTags(f.Tags)
		keys := make([]string, len(tags))
		for i, t := range tags {
			k := fragment.Fold(t)
			keys[i] = k
			if _, ok := idx.names[k]; !ok {
				idx.names[k] = t
				idx.order = append(idx.order, k)
			}
			idx.counts[k]++
		}
		for _, a := range keys {
			for _, b := range keys {
				if a == b {
					continue
				}
				if idx.cooccurs[a] == nil {
					idx.cooccurs[a] = map[string]int{}
				}
				idx.cooccurs[a][b]++
			}
		}
	}
	return idx
}

// Tags lists every tag by count descending, then by name.
func (idx *TagIndex) Tags() []TagStat {
	out := make([]TagStat, 0, len(idx.order))
	for _, k := range idx.order {
		out = append(out, TagStat{Name: idx.names[k], Count: idx.counts[k]})
	}
	sortStats(out)
	return out
}

// Count returns how many fragments carry tag, compared case-insensitively.
func (idx *TagIndex) Count(tag string) int {
	return idx.counts[fragment.TagKey(tag)]
}

// Related returns tags that co-occur with tag, most frequent first. limit <= 0 means all.
func (idx *TagIndex) Related(tag string, limit int) []TagStat {
	co := idx.cooccurs[fragment.TagKey(tag)]
	out := make([]TagStat, 0, len(co))
	for k, n := range co {
		out = append(out, TagStat{Name: idx.names[k], Count: n})
	}
	sortStats(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortStats(s []TagStat) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Count != s[j].Count {
			return s[i].Count > s[j].Count
		}
		return s[i].Name < s[j].Name
	})
}
