package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

func record() types.RecipeRecord {
	return types.RecipeRecord{
		RecipeID:     "r1",
		Title:        "Lentil Soup",
		KcalTotal:    500,
		DietaryTags:  []string{"vegan", "gluten-free"},
		PrepTimeMin:  25,
		CookingSkill: 2,
	}
}

func TestSimpleStrategyWeights(t *testing.T) {
	res := NewSimpleStrategy().Score(Input{
		Record:       record(),
		Cosine:       1,
		TargetKcal:   500,
		RequiredTags: NewTagSet("vegan"),
	})

	assert.InDelta(t, 1.0, res.Score, 1e-9)
	assert.Equal(t, StrategySimple, res.Breakdown.Strategy)
	assert.Equal(t, 0.6, res.Breakdown.Weights["semantic"])
	assert.Equal(t,
		"Selected because it's an excellent match for your meal preferences, perfect calorie match (500 vs 500 target), fully compatible with your dietary preferences.",
		res.Rationale)

	res = NewSimpleStrategy().Score(Input{
		Record:       record(),
		Cosine:       0,
		TargetKcal:   625,
		RequiredTags: NewTagSet("keto"),
	})
	// 0.6*0.5 + 0.3*0.8 + 0.1*0
	assert.InDelta(t, 0.54, res.Score, 1e-9)
}

func TestAdvancedStrategyWeights(t *testing.T) {
	in := Input{
		Record:       record(),
		Cosine:       1,
		TargetKcal:   500,
		RequiredTags: NewTagSet("vegan"),
		UserSkill:    3,
	}

	res := NewAdvancedStrategy().Score(in)
	assert.InDelta(t, 1.0, res.Score, 1e-9)
	assert.Equal(t, StrategyAdvanced, res.Breakdown.Strategy)
	assert.Contains(t, res.Rationale, "matches your cooking skill level")
	assert.Contains(t, res.Rationale, "quick to prepare (25 min)")
	assert.NotContains(t, res.Rationale, "recently used")

	in.RecentlyUsed = true
	res = NewAdvancedStrategy().Score(in)
	assert.InDelta(t, 0.7, res.Score, 1e-9)
	assert.Equal(t, 0.3, res.Breakdown.RecencyPenalty)
	assert.Contains(t, res.Rationale, "recently used (lower priority)")
}

func TestAdvancedStrategyFloorsAtZero(t *testing.T) {
	rec := record()
	rec.KcalTotal = 5000
	rec.CookingSkill = 5
	rec.PrepTimeMin = 200
	rec.DietaryTags = nil

	res := NewAdvancedStrategy().Score(Input{
		Record:       rec,
		Cosine:       -1,
		TargetKcal:   500,
		RequiredTags: NewTagSet("vegan"),
		UserSkill:    0,
		MaxPrepTime:  intPtr(30),
		RecentlyUsed: true,
	})

	assert.Equal(t, 0.0, res.Score)
	assert.Contains(t, res.Rationale, "slightly challenging for your skill level")
}

func TestStrategyIsOrderIndependent(t *testing.T) {
	s := NewAdvancedStrategy()
	a := Input{Record: record(), Cosine: 0.4, TargetKcal: 450, UserSkill: 2}
	b := a
	b.Record.RecipeID = "r2"
	b.Cosine = 0.9

	first := []float64{s.Score(a).Score, s.Score(b).Score}
	second := []float64{s.Score(b).Score, s.Score(a).Score}
	assert.Equal(t, first[0], second[1])
	assert.Equal(t, first[1], second[0])
}

func TestByName(t *testing.T) {
	s, err := ByName("simple")
	require.NoError(t, err)
	assert.Equal(t, StrategySimple, s.Name())

	s, err = ByName("")
	require.NoError(t, err)
	assert.Equal(t, StrategyAdvanced, s.Name())

	_, err = ByName("learned")
	assert.Error(t, err)
}

func TestRationaleFallback(t *testing.T) {
	got := Rationale(RationaleInput{Semantic: 0.2, Calorie: 0.1, Dietary: 0, RequiredTags: NewTagSet("vegan")})
	assert.Equal(t, "Selected because it's an best available option.", got)
}

func TestRationalePartialDietaryMatch(t *testing.T) {
	got := Rationale(RationaleInput{
		Semantic:     0.65,
		Calorie:      0.75,
		Dietary:      0.5,
		RecipeKcal:   420,
		TargetKcal:   500,
		RecipeTags:   []string{"vegetarian"},
		RequiredTags: NewTagSet("vegetarian", "vegan"),
	})
	assert.Equal(t,
		"Selected because it's an good match for your meal preferences, close calorie match (420 kcal), matches dietary preferences (vegetarian).",
		got)
}
