// Package planner turns ranked candidates into daily and weekly meal plans.
package planner

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

const (
	minPortion = 0.5
	maxPortion = 2.0
	// DefaultTopPickProbability is the chance of taking the best available candidate
	DefaultTopPickProbability = 0.7
	varietyPoolSize           = 3
	defaultInstructions       = "See recipe for details"
)

// Assembler builds a DailyMealPlan from per-slot candidates. Selection
// draws from its own seeded source so runs are reproducible.
type Assembler struct {
	mu      sync.Mutex
	rng     *rand.Rand
	topPick float64
	now     func() time.Time
	logger  *zap.Logger
}

// AssemblerOption configures an Assembler
type AssemblerOption func(*Assembler)

// WithSeed seeds the selection source
func WithSeed(seed int64) AssemblerOption {
	return func(a *Assembler) { a.rng = rand.New(rand.NewSource(seed)) }
}

// WithClock overrides the plan timestamp source
func WithClock(now func() time.Time) AssemblerOption {
	return func(a *Assembler) { a.now = now }
}

// WithTopPickProbability sets the chance of picking the top candidate.
// 1 makes selection fully deterministic.
func WithTopPickProbability(p float64) AssemblerOption {
	return func(a *Assembler) {
		if p >= 0 && p <= 1 {
			a.topPick = p
		}
	}
}

// NewAssembler creates an assembler. Without WithSeed it seeds from the clock.
func NewAssembler(logger *zap.Logger, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		topPick: DefaultTopPickProbability,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return a
}

// Assemble fills the four slots in fixed order. Slots without candidates
// are skipped and listed in CoverageGaps.
func (a *Assembler) Assemble(userID string, candidates map[types.MealType][]types.RecipeCandidate, targets map[types.MealType]float64) *types.DailyMealPlan {
	a.mu.Lock()
	defer a.mu.Unlock()

	plan := &types.DailyMealPlan{
		PlanID:              NewPlanID(),
		UserID:              userID,
		Date:                a.now().Format(time.RFC3339),
		Meals:               []types.MealSlotAssignment{},
		NutritionProvenance: types.ProvenanceDeterministic,
		PlanVersion:         types.PlanVersion,
		Sources:             []types.SourceCitation{},
	}

	used := make(map[string]struct{})
	var total types.Nutrition

	for _, meal := range types.MealOrder {
		list := candidates[meal]
		if len(list) == 0 {
			a.logger.Warn("no candidates for meal slot", zap.String("meal_type", string(meal)))
			plan.CoverageGaps = append(plan.CoverageGaps, meal)
			continue
		}

		selected := a.pick(meal, list, used)
		used[selected.RecipeID] = struct{}{}

		target, hasTarget := targets[meal]
		assignment := buildAssignment(meal, selected, target, hasTarget)
		plan.Meals = append(plan.Meals, assignment)

		if assignment.NutritionStatus == types.NutritionIndexed {
			total.Kcal += assignment.Kcal
			total.ProteinG += assignment.ProteinG
			total.CarbsG += assignment.CarbsG
			total.FatG += assignment.FatG
		}

		plan.Sources = append(plan.Sources, types.SourceCitation{
			MealType:             meal,
			RecipeID:             selected.RecipeID,
			SourceDocID:          selected.RecipeID,
			SourceSnippetExcerpt: excerpt(selected.RecipeRecord),
		})
	}

	plan.TotalNutrition = types.Nutrition{
		Kcal:     round1(total.Kcal),
		ProteinG: round1(total.ProteinG),
		CarbsG:   round1(total.CarbsG),
		FatG:     round1(total.FatG),
	}

	a.logger.Info("assembled meal plan",
		zap.String("plan_id", plan.PlanID),
		zap.Int("meals", len(plan.Meals)),
		zap.Float64("kcal", plan.TotalNutrition.Kcal))
	return plan
}

// pick prefers the highest-ranked unused candidate, occasionally choosing
// among the top three for variety. Exhausted lists repeat the top entry.
func (a *Assembler) pick(meal types.MealType, list []types.RecipeCandidate, used map[string]struct{}) types.RecipeCandidate {
	available := make([]types.RecipeCandidate, 0, len(list))
	for _, c := range list {
		if _, ok := used[c.RecipeID]; !ok {
			available = append(available, c)
		}
	}

	switch {
	case len(available) == 0:
		a.logger.Warn("all candidates already used, repeating recipe",
			zap.String("meal_type", string(meal)),
			zap.String("recipe_id", list[0].RecipeID))
		return list[0]
	case len(available) == 1:
		return available[0]
	}

	if a.rng.Float64() < a.topPick {
		return available[0]
	}
	pool := min(varietyPoolSize, len(available))
	return available[a.rng.Intn(pool)]
}

func buildAssignment(meal types.MealType, c types.RecipeCandidate, target float64, hasTarget bool) types.MealSlotAssignment {
	m := 1.0
	status := types.NutritionIndexed
	switch {
	case c.KcalTotal <= 0:
		status = types.NutritionMissing
	case hasTarget:
		m = PortionMultiplier(target, c.KcalTotal)
	}

	instructions := c.Instructions
	if instructions == "" {
		instructions = defaultInstructions
	}

	return types.MealSlotAssignment{
		MealType:        meal,
		RecipeID:        c.RecipeID,
		RecipeTitle:     c.Title,
		PortionSize:     PortionLabel(m),
		Multiplier:      m,
		Ingredients:     c.Ingredients,
		Instructions:    instructions,
		Kcal:            round1(c.KcalTotal * m),
		ProteinG:        round1(c.ProteinGTotal * m),
		CarbsG:          round1(c.CarbsGTotal * m),
		FatG:            round1(c.FatGTotal * m),
		NutritionStatus: status,
	}
}

// PortionMultiplier scales a recipe toward the slot target within [0.5, 2.0]
func PortionMultiplier(targetKcal, recipeKcal float64) float64 {
	if recipeKcal <= 0 {
		return 1
	}
	return math.Max(minPortion, math.Min(maxPortion, targetKcal/recipeKcal))
}

// PortionLabel renders a multiplier for display
func PortionLabel(m float64) string {
	if math.Abs(m-1) < 0.1 {
		return "1 serving"
	}
	return fmt.Sprintf("%.1fx serving", m)
}

// NewPlanID returns a plan_ prefixed 12 hex character id
func NewPlanID() string {
	return "plan_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func excerpt(r types.RecipeRecord) string {
	ingredients := r.Ingredients
	if len(ingredients) > 3 {
		ingredients = ingredients[:3]
	}
	return fmt.Sprintf("%s: %s", r.Title, strings.Join(ingredients, ", "))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
