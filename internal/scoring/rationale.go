package scoring

import (
	"fmt"
	"strings"
)

// RationaleInput carries the component scores used to explain a ranking.
// Skill and PrepTimeMin are nil for strategies that do not score them.
type RationaleInput struct {
	Semantic     float64
	Calorie      float64
	Dietary      float64
	Skill        *float64
	PrepTimeMin  *int
	RecipeKcal   float64
	TargetKcal   float64
	RecipeTags   []string
	RequiredTags TagSet
	RecentlyUsed bool
}

// Rationale renders a fixed-threshold explanation of a score. The same
// input always yields the same sentence.
func Rationale(in RationaleInput) string {
	var reasons []string

	switch {
	case in.Semantic >= 0.8:
		reasons = append(reasons, "excellent match for your meal preferences")
	case in.Semantic >= 0.6:
		reasons = append(reasons, "good match for your meal preferences")
	}

	switch {
	case in.Calorie >= 0.9:
		reasons = append(reasons, fmt.Sprintf("perfect calorie match (%.0f vs %.0f target)", in.RecipeKcal, in.TargetKcal))
	case in.Calorie >= 0.7:
		reasons = append(reasons, fmt.Sprintf("close calorie match (%.0f kcal)", in.RecipeKcal))
	}

	if len(in.RequiredTags) > 0 {
		switch {
		case in.Dietary == 1:
			reasons = append(reasons, "fully compatible with your dietary preferences")
		case in.Dietary >= 0.5:
			if matching := in.RequiredTags.Intersect(in.RecipeTags); len(matching) > 0 {
				reasons = append(reasons, fmt.Sprintf("matches dietary preferences (%s)", strings.Join(matching, ", ")))
			}
		}
	}

	if in.Skill != nil {
		switch {
		case *in.Skill == 1:
			reasons = append(reasons, "matches your cooking skill level")
		case *in.Skill < 0.7:
			reasons = append(reasons, "slightly challenging for your skill level")
		}
	}

	if in.PrepTimeMin != nil && *in.PrepTimeMin <= 30 {
		reasons = append(reasons, fmt.Sprintf("quick to prepare (%d min)", *in.PrepTimeMin))
	}

	if in.RecentlyUsed {
		reasons = append(reasons, "recently used (lower priority)")
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "best available option")
	}

	return "Selected because it's an " + strings.Join(reasons, ", ") + "."
}
