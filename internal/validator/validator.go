// Package validator checks assembled meal plans for structure, numeric
// provenance and basic safety.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/metrics"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

// ErrPlanRejected is returned for authored plans that fail any check
var ErrPlanRejected = errors.New("meal plan rejected")

const (
	// DefaultTolerance is the allowed share of drift between meal sums and totals
	DefaultTolerance    = 0.1
	provenanceTolerance = 0.01
)

var (
	requiredPlanFields      = []string{"plan_id", "user_id", "date", "meals", "total_nutrition", "nutrition_provenance", "plan_version", "sources"}
	requiredMealFields      = []string{"meal_type", "recipe_id", "recipe_title", "portion_size", "ingredients", "instructions", "kcal", "protein_g", "carbs_g", "fat_g", "nutrition_status"}
	requiredNutritionFields = []string{"kcal", "protein_g", "carbs_g", "fat_g"}
)

// Report groups validation errors by category
type Report struct {
	Schema     []string `json:"schema"`
	Provenance []string `json:"provenance"`
	Safety     []string `json:"safety"`
}

// Valid reports whether no check failed
func (r Report) Valid() bool {
	return r.ErrorCount() == 0
}

// ErrorCount is the number of errors across categories
func (r Report) ErrorCount() int {
	return len(r.Schema) + len(r.Provenance) + len(r.Safety)
}

// Validator runs the plan checks
type Validator struct {
	minDailyCalories float64
	tolerance        float64
	metrics          *metrics.Metrics
	logger           *zap.Logger
}

// NewValidator creates a validator. Non-positive arguments fall back to
// the 1200 kcal floor and 10% tolerance.
func NewValidator(minDailyCalories, tolerance float64, m *metrics.Metrics, logger *zap.Logger) *Validator {
	if minDailyCalories <= 0 {
		minDailyCalories = 1200
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Validator{minDailyCalories: minDailyCalories, tolerance: tolerance, metrics: m, logger: logger}
}

// ValidateSchema checks the JSON shape of a decoded plan document
func (v *Validator) ValidateSchema(doc map[string]any) []string {
	var errs []string

	for _, f := range requiredPlanFields {
		if _, ok := doc[f]; !ok {
			errs = append(errs, fmt.Sprintf("Missing required field: %s", f))
		}
	}

	if raw, ok := doc["meals"]; ok {
		meals, isList := raw.([]any)
		if !isList {
			errs = append(errs, "'meals' must be an array")
		}
		for i, m := range meals {
			meal, isObj := m.(map[string]any)
			if !isObj {
				errs = append(errs, fmt.Sprintf("Meal %d: must be an object", i))
				continue
			}
			for _, f := range requiredMealFields {
				if _, ok := meal[f]; !ok {
					errs = append(errs, fmt.Sprintf("Meal %d: missing field '%s'", i, f))
				}
			}
		}
	}

	if raw, ok := doc["total_nutrition"]; ok {
		total, isObj := raw.(map[string]any)
		if !isObj {
			errs = append(errs, "'total_nutrition' must be an object")
		}
		for _, f := range requiredNutritionFields {
			if isObj {
				if _, ok := total[f]; !ok {
					errs = append(errs, fmt.Sprintf("total_nutrition: missing field '%s'", f))
				}
			}
		}
	}

	if raw, ok := doc["sources"]; ok {
		if _, isList := raw.([]any); !isList {
			errs = append(errs, "'sources' must be an array")
		}
	}

	return errs
}

// provenance is the set of numbers a plan may legitimately contain
type provenance map[string][]float64

func buildProvenance(targets types.NutritionTargets, candidates map[types.MealType][]types.RecipeCandidate) provenance {
	p := provenance{
		"kcal":      {round2(targets.TargetKcal)},
		"protein_g": {round2(targets.ProteinG)},
		"carbs_g":   {round2(targets.CarbsG)},
		"fat_g":     {round2(targets.FatG)},
	}
	for _, kcal := range targets.MealSplits {
		p["kcal"] = append(p["kcal"], round2(kcal))
	}
	for _, list := range candidates {
		for _, c := range list {
			p.addScaled(c.RecipeRecord, 1)
		}
	}
	return p
}

func (p provenance) addScaled(r types.RecipeRecord, m float64) {
	p["kcal"] = append(p["kcal"], round2(round1(r.KcalTotal*m)))
	p["protein_g"] = append(p["protein_g"], round2(round1(r.ProteinGTotal*m)))
	p["carbs_g"] = append(p["carbs_g"], round2(round1(r.CarbsGTotal*m)))
	p["fat_g"] = append(p["fat_g"], round2(round1(r.FatGTotal*m)))
}

func (p provenance) has(field string, value float64) bool {
	v := round2(value)
	for _, allowed := range p[field] {
		if math.Abs(v-allowed) <= provenanceTolerance+1e-9 {
			return true
		}
	}
	return false
}

// ValidateProvenance checks that every meal's numbers trace back to the
// targets or the candidates. Values scaled by the meal's recorded portion
// multiplier are accepted for the recipe that meal selected.
func (v *Validator) ValidateProvenance(plan *types.DailyMealPlan, targets types.NutritionTargets, candidates map[types.MealType][]types.RecipeCandidate) []string {
	return v.provenance(plan, targets, candidates, true)
}

func (v *Validator) provenance(plan *types.DailyMealPlan, targets types.NutritionTargets, candidates map[types.MealType][]types.RecipeCandidate, allowScaled bool) []string {
	base := buildProvenance(targets, candidates)
	var errs []string

	for _, meal := range plan.Meals {
		if meal.NutritionStatus == types.NutritionMissing {
			continue
		}

		allowed := base
		if allowScaled {
			allowed = provenance{}
			for k, vals := range base {
				allowed[k] = vals
			}
			for _, c := range candidates[meal.MealType] {
				if c.RecipeID == meal.RecipeID {
					allowed.addScaled(c.RecipeRecord, meal.Multiplier)
				}
			}
		}

		checks := []struct {
			field string
			value float64
		}{
			{"kcal", meal.Kcal},
			{"protein_g", meal.ProteinG},
			{"carbs_g", meal.CarbsG},
			{"fat_g", meal.FatG},
		}
		for _, c := range checks {
			if !allowed.has(c.field, c.value) {
				errs = append(errs, fmt.Sprintf("Meal %s: %s value %v not found in input context", meal.MealType, c.field, c.value))
			}
		}
	}
	return errs
}

// ValidateSafety checks the calorie floor and that meal sums reconcile
// with the plan totals within the tolerance.
func (v *Validator) ValidateSafety(plan *types.DailyMealPlan) []string {
	var errs []string
	total := plan.TotalNutrition

	if total.Kcal < v.minDailyCalories {
		errs = append(errs, fmt.Sprintf("Total calories %.1f below minimum %.0f", total.Kcal, v.minDailyCalories))
	}

	var sum types.Nutrition
	for _, m := range plan.Meals {
		if m.NutritionStatus == types.NutritionMissing {
			continue
		}
		sum.Kcal += m.Kcal
		sum.ProteinG += m.ProteinG
		sum.CarbsG += m.CarbsG
		sum.FatG += m.FatG
	}

	checks := []struct {
		name       string
		unit       string
		sum, total float64
	}{
		{"kcal", "", sum.Kcal, total.Kcal},
		{"protein", "g", sum.ProteinG, total.ProteinG},
		{"carbs", "g", sum.CarbsG, total.CarbsG},
		{"fat", "g", sum.FatG, total.FatG},
	}
	for _, c := range checks {
		if math.Abs(c.sum-c.total) > c.total*v.tolerance {
			errs = append(errs, fmt.Sprintf("Meal %s sum %.1f%s doesn't match total %.1f%s", c.name, c.sum, c.unit, c.total, c.unit))
		}
	}
	return errs
}

// Validate runs every check on an engine-built plan. Failures are
// advisory: they are logged and reported, never returned as errors.
func (v *Validator) Validate(plan *types.DailyMealPlan, targets types.NutritionTargets, candidates map[types.MealType][]types.RecipeCandidate) Report {
	var report Report

	doc, err := toDocument(plan)
	if err != nil {
		report.Schema = []string{fmt.Sprintf("plan is not encodable: %v", err)}
	} else {
		report.Schema = v.ValidateSchema(doc)
	}
	report.Provenance = v.ValidateProvenance(plan, targets, candidates)
	report.Safety = v.ValidateSafety(plan)

	v.record(plan.PlanID, report)
	return report
}

// ValidateAuthored decodes and checks a plan written outside the engine.
// Its numbers must match the context exactly, so portion scaling is not
// accepted, and any failure rejects the plan.
func (v *Validator) ValidateAuthored(raw []byte, targets types.NutritionTargets, candidates map[types.MealType][]types.RecipeCandidate) (*types.DailyMealPlan, Report, error) {
	var report Report

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		report.Schema = []string{fmt.Sprintf("invalid JSON: %v", err)}
		return nil, report, fmt.Errorf("%w: %v", ErrPlanRejected, err)
	}
	report.Schema = v.ValidateSchema(doc)
	if len(report.Schema) > 0 {
		v.record("", report)
		return nil, report, fmt.Errorf("%w: %d schema errors", ErrPlanRejected, len(report.Schema))
	}

	var plan types.DailyMealPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		report.Schema = []string{fmt.Sprintf("invalid plan: %v", err)}
		return nil, report, fmt.Errorf("%w: %v", ErrPlanRejected, err)
	}

	report.Provenance = v.provenance(&plan, targets, candidates, false)
	report.Safety = v.ValidateSafety(&plan)
	v.record(plan.PlanID, report)

	if !report.Valid() {
		return nil, report, fmt.Errorf("%w: %d validation errors", ErrPlanRejected, report.ErrorCount())
	}
	return &plan, report, nil
}

func (v *Validator) record(planID string, r Report) {
	v.metrics.AddValidationFailures("schema", len(r.Schema))
	v.metrics.AddValidationFailures("provenance", len(r.Provenance))
	v.metrics.AddValidationFailures("safety", len(r.Safety))

	if r.Valid() {
		v.logger.Debug("meal plan validation passed", zap.String("plan_id", planID))
		return
	}
	v.logger.Warn("meal plan validation failed",
		zap.String("plan_id", planID),
		zap.Strings("schema", r.Schema),
		zap.Strings("provenance", r.Provenance),
		zap.Strings("safety", r.Safety))
}

func toDocument(plan *types.DailyMealPlan) (map[string]any, error) {
	data, err := json.Marshal(plan)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
