package service

import (
	"strings"

	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

// Profile bounds. Values outside them are clamped, not rejected.
const (
	minAge      = 13
	maxAge      = 120
	minWeightKg = 30.0
	maxWeightKg = 300.0
	minHeightCm = 100.0
	maxHeightCm = 250.0
)

var (
	knownSexes = map[types.Sex]struct{}{
		types.SexMale: {}, types.SexFemale: {}, types.SexOther: {},
	}
	knownActivities = map[types.ActivityLevel]struct{}{
		types.ActivitySedentary: {}, types.ActivityLight: {}, types.ActivityModerate: {},
		types.ActivityActive: {}, types.ActivityVeryActive: {},
	}
	knownGoals = map[types.Goal]struct{}{
		types.GoalLose: {}, types.GoalMaintain: {}, types.GoalGain: {},
	}
	knownDiets = map[types.DietaryPreference]struct{}{
		types.DietVegan: {}, types.DietVegetarian: {}, types.DietOvoLacto: {},
		types.DietPescatarian: {}, types.DietOmnivore: {},
	}
)

// normalizeProfile lowercases enum fields and clamps or defaults anything
// out of range, logging one warning per adjusted field.
func normalizeProfile(p types.UserProfile, log *zap.Logger) types.UserProfile {
	switch {
	case p.Age < minAge:
		log.Warn("profile age out of range, clamping", zap.String("field", "age"), zap.Int("value", p.Age), zap.Int("clamped", minAge))
		p.Age = minAge
	case p.Age > maxAge:
		log.Warn("profile age out of range, clamping", zap.String("field", "age"), zap.Int("value", p.Age), zap.Int("clamped", maxAge))
		p.Age = maxAge
	}

	p.WeightKg = clampFloat(p.WeightKg, minWeightKg, maxWeightKg, "weight_kg", log)
	p.HeightCm = clampFloat(p.HeightCm, minHeightCm, maxHeightCm, "height_cm", log)

	sex := types.Sex(enumValue(string(p.Sex), ""))
	if _, ok := knownSexes[sex]; !ok {
		log.Warn("unknown profile value, using default", zap.String("field", "sex"), zap.String("value", string(p.Sex)), zap.String("default", string(types.SexOther)))
		sex = types.SexOther
	}
	p.Sex = sex

	activity := types.ActivityLevel(enumValue(string(p.ActivityLevel), "_"))
	if _, ok := knownActivities[activity]; !ok {
		log.Warn("unknown profile value, using default", zap.String("field", "activity_level"), zap.String("value", string(p.ActivityLevel)), zap.String("default", string(types.ActivitySedentary)))
		activity = types.ActivitySedentary
	}
	p.ActivityLevel = activity

	if p.Goal != "" {
		goal := types.Goal(enumValue(string(p.Goal), ""))
		if _, ok := knownGoals[goal]; !ok {
			log.Warn("unknown profile value, using default", zap.String("field", "goal"), zap.String("value", string(p.Goal)), zap.String("default", string(types.GoalMaintain)))
			goal = types.GoalMaintain
		}
		p.Goal = goal
	}

	diet := types.DietaryPreference(enumValue(string(p.DietPref), "-"))
	if _, ok := knownDiets[diet]; !ok {
		log.Warn("unknown profile value, using default", zap.String("field", "diet_pref"), zap.String("value", string(p.DietPref)), zap.String("default", string(types.DietOmnivore)))
		diet = types.DietOmnivore
	}
	p.DietPref = diet

	return p
}

// enumValue lowercases and trims v. When sep is set, inner spaces,
// hyphens and underscores are all rewritten to sep.
func enumValue(v, sep string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if sep == "" {
		return v
	}
	return strings.NewReplacer(" ", sep, "-", sep, "_", sep).Replace(v)
}

func clampFloat(v, lo, hi float64, field string, log *zap.Logger) float64 {
	switch {
	case v < lo:
		log.Warn("profile value out of range, clamping", zap.String("field", field), zap.Float64("value", v), zap.Float64("clamped", lo))
		return lo
	case v > hi:
		log.Warn("profile value out of range, clamping", zap.String("field", field), zap.Float64("value", v), zap.Float64("clamped", hi))
		return hi
	}
	return v
}
