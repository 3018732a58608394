package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

func TestAdjustForPreferences(t *testing.T) {
	rec := types.RecipeRecord{RecipeID: "r1", DietaryTags: []string{"mediterranean"}}
	w := DefaultPreferenceWeights()

	tests := []struct {
		name     string
		base     float64
		prefs    types.UserPreferenceState
		want     float64
		wantPref float64
		wantReg  float64
	}{
		{
			name:     "liked",
			base:     0.7,
			prefs:    types.UserPreferenceState{LikedRecipeIDs: map[string]struct{}{"r1": {}}},
			want:     0.9,
			wantPref: 0.2,
		},
		{
			name:     "disliked",
			base:     0.7,
			prefs:    types.UserPreferenceState{DislikedRecipeIDs: map[string]struct{}{"r1": {}}},
			want:     0.2,
			wantPref: -0.5,
		},
		{
			name: "liked wins over disliked",
			base: 0.5,
			prefs: types.UserPreferenceState{
				LikedRecipeIDs:    map[string]struct{}{"r1": {}},
				DislikedRecipeIDs: map[string]struct{}{"r1": {}},
			},
			want:     0.7,
			wantPref: 0.2,
		},
		{
			name:    "regional",
			base:    0.5,
			prefs:   types.UserPreferenceState{RegionalProfile: "mediterranean"},
			want:    0.8,
			wantReg: 0.3,
		},
		{
			name:  "global profile never boosts",
			base:  0.5,
			prefs: types.UserPreferenceState{RegionalProfile: "global"},
			want:  0.5,
		},
		{
			name: "clamped high",
			base: 0.9,
			prefs: types.UserPreferenceState{
				LikedRecipeIDs:  map[string]struct{}{"r1": {}},
				RegionalProfile: "mediterranean",
			},
			want:     1.0,
			wantPref: 0.2,
			wantReg:  0.3,
		},
		{
			name:     "clamped low",
			base:     0.1,
			prefs:    types.UserPreferenceState{DislikedRecipeIDs: map[string]struct{}{"r1": {}}},
			want:     0,
			wantPref: -0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adj := AdjustForPreferences(tt.base, rec, tt.prefs, w)
			assert.InDelta(t, tt.want, adj.Score, 1e-9)
			assert.InDelta(t, tt.wantPref, adj.PreferenceBoost, 1e-9)
			assert.InDelta(t, tt.wantReg, adj.RegionalBoost, 1e-9)
		})
	}
}

func TestAnnotateRationale(t *testing.T) {
	base := "Selected because it's an best available option."

	assert.Equal(t, base, AnnotateRationale(base, Adjustment{}, "global"))
	assert.Equal(t,
		base+" (You've liked this recipe before!, Matches your thai preference)",
		AnnotateRationale(base, Adjustment{PreferenceBoost: 0.2, RegionalBoost: 0.3}, "thai"))
	assert.Equal(t,
		base+" (Lower priority - previously disliked)",
		AnnotateRationale(base, Adjustment{PreferenceBoost: -0.5}, "thai"))
}

func TestRequiredTags(t *testing.T) {
	assert.Equal(t, []string{"vegan"}, RequiredTags(types.DietVegan).Sorted())
	assert.Equal(t, []string{"vegan", "vegetarian"}, RequiredTags(types.DietVegetarian).Sorted())
	assert.Equal(t, []string{"ovo-lacto", "vegan", "vegetarian"}, RequiredTags(types.DietOvoLacto).Sorted())
	assert.Equal(t, []string{"pescatarian", "vegan", "vegetarian"}, RequiredTags(types.DietPescatarian).Sorted())
	assert.Empty(t, RequiredTags(types.DietOmnivore))
}
