package fragment

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "trim and drop empty", in: []string{" work ", "", "  "}, want: []string{"work"}},
		{name: "case-insensitive dedupe keeps first spelling", in: []string{"Work", "work", "WORK", "home"}, want: []string{"Work", "home"}},
		{name: "insertion order", in: []string{"b", "a", "c"}, want: []string{"b", "a", "c"}},
		{name: "nil", in: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTags(tt.in))
		})
	}
}

func TestNormalizeTags_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("normalizing twice equals normalizing once", prop.ForAll(
		func(tags []string) bool {
			once := NormalizeTags(tags)
			return assert.ObjectsAreEqual(once, NormalizeTags(once))
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("no two tags share a key", prop.ForAll(
		func(tags []string) bool {
			seen := map[string]bool{}
			for _, tag := range NormalizeTags(tags) {
				if seen[TagKey(tag)] {
					return false
				}
				seen[TagKey(tag)] = true
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

func TestNote_IsEmpty(t *testing.T) {
	assert.True(t, Note{}.IsEmpty())
	assert.True(t, Note{Title: "  ", Value: "\t"}.IsEmpty())
	assert.False(t, Note{Title: "t"}.IsEmpty())
	assert.False(t, Note{Value: "v"}.IsEmpty())
}

func TestFragment_CloneIsDeep(t *testing.T) {
	w := 0.5
	f := &Fragment{
		ID:        "f1",
		Tags:      []string{"a"},
		Notes:     []Note{{ID: "n1", Title: "t"}},
		Relations: []Relation{{TargetID: "f2", Type: RelationRelated, Weight: &w}},
		Meta:      &Meta{Pinned: true},
	}

	c := f.Clone()
	c.Tags[0] = "changed"
	c.Notes[0].Title = "changed"
	*c.Relations[0].Weight = 0.9
	c.Meta.Pinned = false

	assert.Equal(t, "a", f.Tags[0])
	assert.Equal(t, "t", f.Notes[0].Title)
	assert.Equal(t, 0.5, *f.Relations[0].Weight)
	assert.True(t, f.Meta.Pinned)
}

func TestFragment_HasTag(t *testing.T) {
	f := &Fragment{Tags: []string{"Errand"}}
	assert.True(t, f.HasTag("errand"))
	assert.True(t, f.HasTag(" ERRAND "))
	assert.False(t, f.HasTag("home"))
}

func TestType_Valid(t *testing.T) {
	assert.True(t, TypeCollection.Valid())
	assert.False(t, Type("").Valid())
	assert.False(t, Type("blob").Valid())
}
