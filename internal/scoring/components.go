// Package scoring holds the pure functions that rank recipe candidates:
// component scores, the two weighted strategies, preference adjustment and
// rationale text.
package scoring

import (
	"math"
)

// DefaultSkillPenaltyPerLevel is deducted per level the recipe exceeds the user
const DefaultSkillPenaltyPerLevel = 0.3

// SemanticScore maps a cosine similarity from [-1,1] onto [0,1]
func SemanticScore(cosine float64) float64 {
	return clamp01((cosine + 1) / 2)
}

// CalorieProximity is 1 at the target and decays linearly to 0 at a
// deviation equal to the target itself.
func CalorieProximity(recipeKcal, targetKcal float64) float64 {
	if targetKcal <= 0 {
		return 0
	}
	return math.Max(0, 1-math.Abs(recipeKcal-targetKcal)/targetKcal)
}

// TagMatch is the share of required tags present on the recipe. An empty
// requirement matches everything.
func TagMatch(recipeTags []string, required TagSet) float64 {
	if len(required) == 0 {
		return 1
	}
	matched := 0
	seen := make(map[string]struct{}, len(recipeTags))
	for _, tag := range recipeTags {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		if required.Has(tag) {
			matched++
		}
	}
	return math.Min(1, float64(matched)/float64(len(required)))
}

// SkillMatch penalizes recipes harder than the user's skill
func SkillMatch(recipeSkill, userSkill int, penaltyPerLevel float64) float64 {
	if recipeSkill <= userSkill {
		return 1
	}
	gap := float64(recipeSkill - userSkill)
	return math.Max(0, 1-gap*penaltyPerLevel)
}

// PrepTimeScore rates preparation time. Without a cap shorter recipes are
// preferred in tiers; with a cap the score decays linearly past it.
func PrepTimeScore(prepMin int, maxPrep *int) float64 {
	if maxPrep == nil || *maxPrep <= 0 {
		switch {
		case prepMin <= 30:
			return 1
		case prepMin <= 60:
			return 0.8
		default:
			return 0.6
		}
	}
	if prepMin <= *maxPrep {
		return 1
	}
	excess := float64(prepMin - *maxPrep)
	return math.Max(0, 1-excess/float64(*maxPrep))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
