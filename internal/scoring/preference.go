package scoring

import (
	"fmt"
	"strings"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

// PreferenceWeights are the additive personalization adjustments
type PreferenceWeights struct {
	LikedBoost      float64
	DislikedPenalty float64
	RegionalBoost   float64
}

// DefaultPreferenceWeights returns +0.2 liked, -0.5 disliked, +0.3 regional
func DefaultPreferenceWeights() PreferenceWeights {
	return PreferenceWeights{LikedBoost: 0.2, DislikedPenalty: 0.5, RegionalBoost: 0.3}
}

// Adjustment is the outcome of applying preferences to one candidate
type Adjustment struct {
	Score           float64
	PreferenceBoost float64
	RegionalBoost   float64
}

// AdjustForPreferences applies liked/disliked and regional adjustments to a
// base score and clamps the result to [0,1]. Liked and disliked are
// mutually exclusive; liked wins if a recipe is in both sets.
func AdjustForPreferences(base float64, rec types.RecipeRecord, prefs types.UserPreferenceState, w PreferenceWeights) Adjustment {
	var pref, regional float64

	if _, ok := prefs.LikedRecipeIDs[rec.RecipeID]; ok {
		pref = w.LikedBoost
	} else if _, ok := prefs.DislikedRecipeIDs[rec.RecipeID]; ok {
		pref = -w.DislikedPenalty
	}

	region := prefs.RegionalProfile
	if region != "" && region != types.DefaultRegionalProfile && rec.HasTag(region) {
		regional = w.RegionalBoost
	}

	return Adjustment{
		Score:           clamp01(base + pref + regional),
		PreferenceBoost: pref,
		RegionalBoost:   regional,
	}
}

// AnnotateRationale appends the personalization notes to a rationale
func AnnotateRationale(rationale string, adj Adjustment, region string) string {
	var notes []string
	switch {
	case adj.PreferenceBoost > 0:
		notes = append(notes, "You've liked this recipe before!")
	case adj.PreferenceBoost < 0:
		notes = append(notes, "Lower priority - previously disliked")
	}
	if adj.RegionalBoost > 0 {
		notes = append(notes, fmt.Sprintf("Matches your %s preference", region))
	}
	if len(notes) == 0 {
		return rationale
	}
	return rationale + " (" + strings.Join(notes, ", ") + ")"
}
