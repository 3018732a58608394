package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

func TestLookup(t *testing.T) {
	r, ok := Lookup(" Diabetes ")
	assert.True(t, ok)
	assert.Equal(t, []string{"high-sugar", "refined-carbs", "sweetened"}, r.AvoidTags)

	_, ok = Lookup("High-Cholesterol")
	assert.True(t, ok)

	_, ok = Lookup("gout")
	assert.False(t, ok)

	for _, c := range Conditions() {
		_, ok := Lookup(c)
		assert.True(t, ok, c)
	}
}

func TestAllows(t *testing.T) {
	recs := []types.RecipeRecord{
		{RecipeID: "a", DietaryTags: []string{"vegan", "high-sugar"}},
		{RecipeID: "b", DietaryTags: []string{"vegan", "processed"}},
		{RecipeID: "c", DietaryTags: []string{"vegan", "low-sodium"}},
	}
	e := NewEngine(zap.NewNop())

	tests := []struct {
		name       string
		conditions []string
		want       []string
	}{
		{"none", nil, []string{"a", "b", "c"}},
		{"diabetes", []string{"diabetes"}, []string{"b", "c"}},
		{"hypertension", []string{"hypertension"}, []string{"a", "c"}},
		{"combined", []string{"diabetes", "ckd-stage-3"}, []string{"c"}},
		{"unknown only", []string{"gout"}, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applicable := e.ApplicableRules(tt.conditions)
			var ids []string
			for _, r := range recs {
				if Allows(r, applicable) {
					ids = append(ids, r.RecipeID)
				}
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestTagsUseHyphens(t *testing.T) {
	for _, tag := range KnownTags() {
		assert.NotContains(t, tag, "_")
	}
}

func TestUnknownConditionIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e := NewEngine(zap.New(core))

	applicable := e.ApplicableRules([]string{"pcos", "gout"})
	assert.Len(t, applicable, 1)
	assert.Equal(t, 1, logs.FilterMessage("unknown health condition").Len())
}

func TestKnownTags(t *testing.T) {
	tags := KnownTags()
	assert.Contains(t, tags, "high-sugar")
	assert.Contains(t, tags, "low-sodium")
	assert.IsNonDecreasing(t, tags)

	seen := map[string]bool{}
	for _, tag := range tags {
		assert.False(t, seen[tag], "duplicate tag %s", tag)
		seen[tag] = true
	}
}
