package planner

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/nutrition"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/retrieval"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

const (
	// DefaultMaxRecipeRepeats caps how often a recipe appears in one week
	DefaultMaxRecipeRepeats = 2
	weeklyCandidatesPerSlot = 10
	weeklyKeepPerSlot       = 3
	dateLayout              = "2006-01-02"
)

// DayNames is the planning order of a week
var DayNames = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// DefaultActivityPattern is moderate on weekdays, light Saturday, rest Sunday
func DefaultActivityPattern() map[string]nutrition.DayActivity {
	return map[string]nutrition.DayActivity{
		"monday":    nutrition.DayModerate,
		"tuesday":   nutrition.DayModerate,
		"wednesday": nutrition.DayModerate,
		"thursday":  nutrition.DayModerate,
		"friday":    nutrition.DayModerate,
		"saturday":  nutrition.DayLight,
		"sunday":    nutrition.DayRest,
	}
}

// WeeklyInput is a parsed weekly planning request
type WeeklyInput struct {
	Profile          types.UserProfile
	StartDate        time.Time
	ActivityPattern  map[string]nutrition.DayActivity
	MaxRecipeRepeats int
	Seed             *int64
	Preferences      *types.UserPreferenceState
	Strategy         string
}

// DayPlan is one day of a weekly plan
type DayPlan struct {
	DayIndex         int                    `json:"day_index"`
	DayName          string                 `json:"day_name"`
	Date             string                 `json:"date"`
	ActivityLevel    nutrition.DayActivity  `json:"activity_level"`
	MealPlan         *types.DailyMealPlan   `json:"meal_plan"`
	NutritionTargets types.NutritionTargets `json:"nutrition_targets"`
}

// RecipeUsage counts how often a recipe appears in the week
type RecipeUsage struct {
	RecipeID string `json:"recipe_id"`
	Count    int    `json:"count"`
}

// WeeklyStats summarizes a week
type WeeklyStats struct {
	TotalKcal       float64       `json:"total_kcal"`
	TotalProteinG   float64       `json:"total_protein_g"`
	TotalCarbsG     float64       `json:"total_carbs_g"`
	TotalFatG       float64       `json:"total_fat_g"`
	AvgDailyKcal    float64       `json:"avg_daily_kcal"`
	UniqueRecipes   int           `json:"unique_recipes"`
	TotalMeals      int           `json:"total_meals"`
	VarietyScore    float64       `json:"variety_score"`
	MostUsedRecipes []RecipeUsage `json:"most_used_recipes"`
}

// WeeklyPlan is seven daily plans with usage statistics
type WeeklyPlan struct {
	WeekPlanID      string                           `json:"week_plan_id"`
	UserID          string                           `json:"user_id"`
	StartDate       string                           `json:"start_date"`
	EndDate         string                           `json:"end_date"`
	Days            []DayPlan                        `json:"days"`
	Stats           WeeklyStats                      `json:"weekly_stats"`
	ActivityPattern map[string]nutrition.DayActivity `json:"activity_pattern"`
	CreatedAt       string                           `json:"created_at"`
}

// WeeklyPlanner plans seven days in sequence, limiting recipe repeats
type WeeklyPlanner struct {
	calc      *nutrition.Calculator
	retriever SlotRetriever
	topPick   float64
	now       func() time.Time
	logger    *zap.Logger
}

// NewWeeklyPlanner creates a weekly planner
func NewWeeklyPlanner(calc *nutrition.Calculator, r SlotRetriever, topPick float64, logger *zap.Logger) *WeeklyPlanner {
	return &WeeklyPlanner{calc: calc, retriever: r, topPick: topPick, now: time.Now, logger: logger}
}

// usage counts recipes in first-use order
type usage struct {
	counts map[string]int
	order  []string
}

func newUsage() *usage {
	return &usage{counts: make(map[string]int)}
}

func (u *usage) add(id string) {
	if _, ok := u.counts[id]; !ok {
		u.order = append(u.order, id)
	}
	u.counts[id]++
}

// Generate plans the week starting at in.StartDate
func (w *WeeklyPlanner) Generate(ctx context.Context, in WeeklyInput) (*WeeklyPlan, error) {
	pattern := in.ActivityPattern
	if len(pattern) == 0 {
		pattern = DefaultActivityPattern()
	}
	maxRepeats := in.MaxRecipeRepeats
	if maxRepeats <= 0 {
		maxRepeats = DefaultMaxRecipeRepeats
	}
	start := in.StartDate
	if start.IsZero() {
		start = w.now()
	}

	opts := []AssemblerOption{WithClock(w.now), WithTopPickProbability(w.topPick)}
	if in.Seed != nil {
		opts = append(opts, WithSeed(*in.Seed))
	}
	assembler := NewAssembler(w.logger, opts...)

	log := w.logger.With(zap.String("user_id", in.Profile.UserID))
	log.Info("generating weekly plan")

	used := newUsage()
	days := make([]DayPlan, 0, len(DayNames))

	for i, day := range DayNames {
		activity, ok := pattern[day]
		if !ok {
			activity = nutrition.DayModerate
		}

		profile := in.Profile
		if level, ok := nutrition.ActivityLevelFor(activity); ok {
			profile = profile.WithActivity(level)
		} else {
			log.Warn("unknown day activity, keeping profile level",
				zap.String("day", day), zap.String("activity", string(activity)))
		}

		targets := nutrition.ScaleMacrosForActivity(w.calc.Calculate(profile), activity)

		results, err := RetrieveSlots(ctx, w.retriever, retrieval.Request{
			DietPref:         profile.DietPref,
			Allergens:        profile.Allergies,
			HealthConditions: profile.HealthConditions,
			UserSkill:        profile.CookingSkill,
			MaxPrepTime:      profile.MaxPrepTimeMin,
			RecentlyUsed:     used.order,
			Preferences:      in.Preferences,
			TopK:             weeklyCandidatesPerSlot,
			Strategy:         in.Strategy,
		}, targets.MealSplits)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve candidates for %s: %w", day, err)
		}

		candidates := results.Candidates()
		for meal, list := range candidates {
			list = filterOverused(list, used, maxRepeats, w.logger)
			if len(list) > weeklyKeepPerSlot {
				list = list[:weeklyKeepPerSlot]
			}
			candidates[meal] = list
		}

		daily := assembler.Assemble(profile.UserID, candidates, targets.MealSplits)
		for _, id := range daily.RecipeIDs() {
			used.add(id)
		}

		days = append(days, DayPlan{
			DayIndex:         i,
			DayName:          day,
			Date:             start.AddDate(0, 0, i).Format(dateLayout),
			ActivityLevel:    activity,
			MealPlan:         daily,
			NutritionTargets: targets,
		})
	}

	plan := &WeeklyPlan{
		WeekPlanID:      "week_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
		UserID:          in.Profile.UserID,
		StartDate:       start.Format(dateLayout),
		EndDate:         start.AddDate(0, 0, len(DayNames)-1).Format(dateLayout),
		Days:            days,
		Stats:           weeklyStats(days, used),
		ActivityPattern: pattern,
		CreatedAt:       w.now().Format(time.RFC3339),
	}

	log.Info("generated weekly plan",
		zap.String("week_plan_id", plan.WeekPlanID),
		zap.Int("unique_recipes", plan.Stats.UniqueRecipes))
	return plan, nil
}

// filterOverused drops recipes already used maxRepeats times. When every
// candidate is overused the list is returned unchanged.
func filterOverused(list []types.RecipeCandidate, used *usage, maxRepeats int, logger *zap.Logger) []types.RecipeCandidate {
	out := make([]types.RecipeCandidate, 0, len(list))
	for _, c := range list {
		if used.counts[c.RecipeID] < maxRepeats {
			out = append(out, c)
		}
	}
	if len(out) == 0 && len(list) > 0 {
		logger.Warn("all candidates overused, keeping original list")
		return list
	}
	return out
}

func weeklyStats(days []DayPlan, used *usage) WeeklyStats {
	var s WeeklyStats
	for _, d := range days {
		s.TotalKcal += d.MealPlan.TotalNutrition.Kcal
		s.TotalProteinG += d.MealPlan.TotalNutrition.ProteinG
		s.TotalCarbsG += d.MealPlan.TotalNutrition.CarbsG
		s.TotalFatG += d.MealPlan.TotalNutrition.FatG
	}

	s.AvgDailyKcal = round1(s.TotalKcal / 7)
	s.TotalKcal = round1(s.TotalKcal)
	s.TotalProteinG = round1(s.TotalProteinG)
	s.TotalCarbsG = round1(s.TotalCarbsG)
	s.TotalFatG = round1(s.TotalFatG)

	s.UniqueRecipes = len(used.counts)
	for _, n := range used.counts {
		s.TotalMeals += n
	}
	if s.TotalMeals > 0 {
		s.VarietyScore = math.Round(float64(s.UniqueRecipes)/float64(s.TotalMeals)*100) / 100
	}

	ranked := make([]RecipeUsage, 0, len(used.order))
	for _, id := range used.order {
		ranked = append(ranked, RecipeUsage{RecipeID: id, Count: used.counts[id]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	s.MostUsedRecipes = ranked
	return s
}
