// Package health holds static dietary rules for common health conditions.
// The rules filter recipes by dietary tag; they are general guidelines and
// not medical advice.
package health

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

// Rule is the constraint set for one condition
type Rule struct {
	Condition   string
	PreferTags  []string
	AvoidTags   []string
	Description string
}

var rules = map[string]Rule{
	"diabetes": {
		Condition:   "diabetes",
		PreferTags:  []string{"low-gi", "whole-grain", "high-fiber"},
		AvoidTags:   []string{"high-sugar", "refined-carbs", "sweetened"},
		Description: "Low-GI foods, limited added sugar, whole grains",
	},
	"hypertension": {
		Condition:   "hypertension",
		PreferTags:  []string{"low-sodium", "heart-healthy", "potassium-rich"},
		AvoidTags:   []string{"high-sodium", "processed", "cured-meats"},
		Description: "Limited sodium and processed foods",
	},
	"high_cholesterol": {
		Condition:   "high_cholesterol",
		PreferTags:  []string{"heart-healthy", "omega3", "high-fiber"},
		AvoidTags:   []string{"high-saturated-fat", "trans-fat", "fried"},
		Description: "Limited saturated and trans fats",
	},
	"pcos": {
		Condition:   "pcos",
		PreferTags:  []string{"low-gi", "high-fiber", "anti-inflammatory"},
		AvoidTags:   []string{"high-sugar", "refined-carbs", "processed"},
		Description: "Low-GI, anti-inflammatory foods",
	},
	"ckd_stage_3": {
		Condition:   "ckd_stage_3",
		PreferTags:  []string{"low-sodium", "low-potassium", "low-phosphorus"},
		AvoidTags:   []string{"high-sodium", "high-potassium", "high-phosphorus", "processed"},
		Description: "Limited sodium, potassium and phosphorus",
	},
}

// Lookup returns the rule for a condition name, case-insensitively.
// Hyphens and spaces are read as underscores.
func Lookup(condition string) (Rule, bool) {
	key := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(condition)))
	r, ok := rules[key]
	return r, ok
}

// Conditions lists the known condition names
func Conditions() []string {
	return []string{"diabetes", "hypertension", "high_cholesterol", "pcos", "ckd_stage_3"}
}

// KnownTags returns every prefer and avoid tag named by a rule, sorted
func KnownTags() []string {
	seen := map[string]struct{}{}
	for _, r := range rules {
		for _, t := range r.PreferTags {
			seen[t] = struct{}{}
		}
		for _, t := range r.AvoidTags {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Engine applies rules for a set of conditions
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a rule engine
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger}
}

// ApplicableRules resolves condition names. Unknown names are logged and skipped.
func (e *Engine) ApplicableRules(conditions []string) []Rule {
	var out []Rule
	for _, c := range conditions {
		r, ok := Lookup(c)
		if !ok {
			e.logger.Warn("unknown health condition", zap.String("condition", c))
			continue
		}
		out = append(out, r)
	}
	return out
}

// Allows reports whether a recipe carries none of the rules' avoid tags
func Allows(rec types.RecipeRecord, applicable []Rule) bool {
	for _, r := range applicable {
		for _, tag := range r.AvoidTags {
			if rec.HasTag(tag) {
				return false
			}
		}
	}
	return true
}
