// Package nutrition derives daily and per-meal calorie and macro targets
// from a user profile.
package nutrition

import (
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

// DefaultMinDailyCalories is the floor applied to every target
const DefaultMinDailyCalories = 1200.0

const kcalPerKgFat = 7700.0

var sexConstants = map[types.Sex]float64{
	types.SexMale:   5,
	types.SexFemale: -161,
	types.SexOther:  -78,
}

var activityMultipliers = map[types.ActivityLevel]float64{
	types.ActivitySedentary:  1.2,
	types.ActivityLight:      1.375,
	types.ActivityModerate:   1.55,
	types.ActivityActive:     1.725,
	types.ActivityVeryActive: 1.9,
}

// DefaultMealSplits distributes the daily target across the four slots
func DefaultMealSplits() map[types.MealType]float64 {
	return map[types.MealType]float64{
		types.MealBreakfast: 0.25,
		types.MealLunch:     0.35,
		types.MealDinner:    0.30,
		types.MealSnacks:    0.10,
	}
}

// Calculator computes NutritionTargets. The zero value is not usable; use
// NewCalculator.
type Calculator struct {
	minDailyCalories float64
	splits           map[types.MealType]float64
}

// Option configures a Calculator
type Option func(*Calculator)

// WithMinDailyCalories overrides the calorie floor
func WithMinDailyCalories(kcal float64) Option {
	return func(c *Calculator) {
		if kcal > 0 {
			c.minDailyCalories = kcal
		}
	}
}

// WithMealSplits overrides the meal split ratios. The map is copied.
func WithMealSplits(splits map[types.MealType]float64) Option {
	return func(c *Calculator) {
		if len(splits) == 0 {
			return
		}
		c.splits = make(map[types.MealType]float64, len(splits))
		for meal, ratio := range splits {
			c.splits[meal] = ratio
		}
	}
}

// NewCalculator creates a calculator with the default floor and splits
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		minDailyCalories: DefaultMinDailyCalories,
		splits:           DefaultMealSplits(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MinDailyCalories returns the configured floor
func (c *Calculator) MinDailyCalories() float64 {
	return c.minDailyCalories
}

// BMR is the Mifflin-St Jeor basal metabolic rate
func BMR(p types.UserProfile) float64 {
	sexConst, ok := sexConstants[p.Sex]
	if !ok {
		sexConst = sexConstants[types.SexOther]
	}
	return 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age) + sexConst
}

// ActivityMultiplier returns the TDEE multiplier for a level, defaulting to
// sedentary for unknown values.
func ActivityMultiplier(level types.ActivityLevel) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return activityMultipliers[types.ActivitySedentary]
}

// Calculate returns the targets for one planning run
func (c *Calculator) Calculate(p types.UserProfile) types.NutritionTargets {
	bmr := BMR(p)
	tdee := bmr * ActivityMultiplier(p.ActivityLevel)

	targetKcal := tdee + p.GoalRateKgPerWeek*kcalPerKgFat/7
	if targetKcal < c.minDailyCalories {
		targetKcal = c.minDailyCalories
	}

	protein := 1.6 * p.WeightKg
	if floor := 0.20 * targetKcal / 4; floor > protein {
		protein = floor
	}
	fat := 0.25 * targetKcal / 9
	rawCarbs := (targetKcal - protein*4 - fat*9) / 4

	carbs := rawCarbs
	infeasible := false
	if carbs < 0 {
		carbs = 0
		infeasible = true
	}

	splits := make(map[types.MealType]float64, len(c.splits))
	for meal, ratio := range c.splits {
		splits[meal] = targetKcal * ratio
	}

	return types.NutritionTargets{
		BMR:        bmr,
		TDEE:       tdee,
		TargetKcal: targetKcal,
		ProteinG:   protein,
		CarbsG:     carbs,
		FatG:       fat,
		MealSplits: splits,
		RawCarbsG:  rawCarbs,
		Infeasible: infeasible,
	}
}

// DayActivity is the weekly planner's per-day activity label
type DayActivity string

const (
	DayRest       DayActivity = "rest"
	DayLight      DayActivity = "light"
	DayModerate   DayActivity = "moderate"
	DayActive     DayActivity = "active"
	DayVeryActive DayActivity = "very_active"
)

type macroScale struct{ carbs, protein, fat float64 }

var dayMacroScales = map[DayActivity]macroScale{
	DayRest:       {carbs: 0.85, protein: 1.0, fat: 1.15},
	DayLight:      {carbs: 0.95, protein: 1.0, fat: 1.05},
	DayModerate:   {carbs: 1.0, protein: 1.0, fat: 1.0},
	DayActive:     {carbs: 1.15, protein: 1.05, fat: 0.95},
	DayVeryActive: {carbs: 1.25, protein: 1.10, fat: 0.90},
}

// ActivityLevelFor maps a day label onto a profile activity level.
// Rest days are planned as sedentary.
func ActivityLevelFor(day DayActivity) (types.ActivityLevel, bool) {
	switch day {
	case DayRest:
		return types.ActivitySedentary, true
	case DayLight:
		return types.ActivityLight, true
	case DayModerate:
		return types.ActivityModerate, true
	case DayActive:
		return types.ActivityActive, true
	case DayVeryActive:
		return types.ActivityVeryActive, true
	}
	return "", false
}

// ScaleMacrosForActivity shifts the macro mix toward carbs on training days
// and toward fat on rest days. Calories and splits are left untouched.
func ScaleMacrosForActivity(t types.NutritionTargets, day DayActivity) types.NutritionTargets {
	s, ok := dayMacroScales[day]
	if !ok {
		return t
	}
	t.CarbsG *= s.carbs
	t.ProteinG *= s.protein
	t.FatG *= s.fat
	return t
}
