// Package ingestion validates raw recipe documents, normalizes them into
// index records and embeds them into a vector index.
package ingestion

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/health"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

const (
	DefaultPrepTimeMin  = 30
	DefaultCookingSkill = 2
)

// ErrInvalidRecipe is returned for a recipe that cannot be indexed
var ErrInvalidRecipe = errors.New("invalid recipe")

var standardDietaryTags = []string{
	"vegan", "vegetarian", "ovo-lacto", "pescatarian", "omnivore",
	"gluten-free", "dairy-free", "keto", "paleo", "low-carb",
	"high-protein", "mediterranean", "whole30",
}

var standardAllergenTags = []string{
	"nuts", "peanuts", "tree-nuts", "dairy", "eggs", "soy",
	"wheat", "gluten", "fish", "shellfish", "sesame",
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	disallowedRe = regexp.MustCompile(`[^\w\s,.\-()]`)

	tagSeparators = strings.NewReplacer(" ", "-", "_", "-")
)

// RawRecipe is a recipe document as supplied to the indexer. Nutrition
// totals are pointers so a missing field can be told apart from zero.
type RawRecipe struct {
	RecipeID      string   `json:"recipe_id" validate:"required"`
	Title         string   `json:"title" validate:"required"`
	Ingredients   []string `json:"ingredients" validate:"required,min=1"`
	Instructions  string   `json:"instructions" validate:"required"`
	KcalTotal     *float64 `json:"kcal_total" validate:"required,gte=0"`
	ProteinGTotal *float64 `json:"protein_g_total" validate:"required,gte=0"`
	CarbsGTotal   *float64 `json:"carbs_g_total" validate:"required,gte=0"`
	FatGTotal     *float64 `json:"fat_g_total" validate:"required,gte=0"`
	DietaryTags   []string `json:"dietary_tags"`
	AllergenTags  []string `json:"allergen_tags"`
	PrepTimeMin   *int     `json:"prep_time_min" validate:"omitempty,gte=0"`
	CookingSkill  *int     `json:"cooking_skill" validate:"omitempty,gte=0,lte=5"`
}

// Preprocessor turns raw recipes into normalized index records
type Preprocessor struct {
	validate  *validator.Validate
	dietary   map[string]struct{}
	allergens map[string]struct{}
	logger    *zap.Logger
}

// NewPreprocessor creates a preprocessor. The accepted dietary vocabulary
// is the standard diet tags, every tag the health rules refer to and the
// regional cuisine tags.
func NewPreprocessor(logger *zap.Logger) *Preprocessor {
	p := &Preprocessor{
		validate:  validator.New(),
		dietary:   make(map[string]struct{}),
		allergens: make(map[string]struct{}),
		logger:    logger,
	}
	for _, t := range standardDietaryTags {
		p.dietary[t] = struct{}{}
	}
	for _, t := range health.KnownTags() {
		p.dietary[t] = struct{}{}
	}
	for _, t := range types.RegionalProfiles() {
		p.dietary[t] = struct{}{}
	}
	for _, t := range standardAllergenTags {
		p.allergens[t] = struct{}{}
	}
	return p
}

// Normalize validates raw and returns the cleaned record. Tags outside the
// vocabulary are dropped and reported as warnings.
func (p *Preprocessor) Normalize(raw RawRecipe) (types.RecipeRecord, []string, error) {
	if err := p.validate.Struct(raw); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return types.RecipeRecord{}, nil, fmt.Errorf("%w %q: %s", ErrInvalidRecipe, raw.RecipeID, strings.Join(fields, ", "))
		}
		return types.RecipeRecord{}, nil, fmt.Errorf("%w %q: %v", ErrInvalidRecipe, raw.RecipeID, err)
	}

	rec := types.RecipeRecord{
		RecipeID:      strings.TrimSpace(raw.RecipeID),
		Title:         CleanText(raw.Title),
		Instructions:  CleanText(raw.Instructions),
		KcalTotal:     *raw.KcalTotal,
		ProteinGTotal: *raw.ProteinGTotal,
		CarbsGTotal:   *raw.CarbsGTotal,
		FatGTotal:     *raw.FatGTotal,
		PrepTimeMin:   DefaultPrepTimeMin,
		CookingSkill:  DefaultCookingSkill,
	}
	rec.Ingredients = make([]string, 0, len(raw.Ingredients))
	for _, ing := range raw.Ingredients {
		if cleaned := CleanText(ing); cleaned != "" {
			rec.Ingredients = append(rec.Ingredients, cleaned)
		}
	}
	if raw.PrepTimeMin != nil {
		rec.PrepTimeMin = *raw.PrepTimeMin
	}
	if raw.CookingSkill != nil {
		rec.CookingSkill = *raw.CookingSkill
	}

	var warnings []string
	rec.DietaryTags, warnings = normalizeTags(raw.DietaryTags, p.dietary, "dietary", warnings)
	rec.AllergenTags, warnings = normalizeTags(raw.AllergenTags, p.allergens, "allergen", warnings)

	for _, w := range warnings {
		p.logger.Warn(w, zap.String("recipe_id", rec.RecipeID))
	}
	return rec, warnings, nil
}

// CleanText collapses whitespace and strips characters other than word
// characters and basic punctuation.
func CleanText(s string) string {
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = disallowedRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// NormalizeTag lowercases and trims a tag and joins words with hyphens.
// Underscores are read as word separators.
func NormalizeTag(tag string) string {
	return tagSeparators.Replace(strings.ToLower(strings.TrimSpace(tag)))
}

func normalizeTags(tags []string, vocab map[string]struct{}, kind string, warnings []string) ([]string, []string) {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		n := NormalizeTag(tag)
		if _, ok := vocab[n]; !ok {
			warnings = append(warnings, fmt.Sprintf("non-standard %s tag: %s", kind, tag))
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out, warnings
}
