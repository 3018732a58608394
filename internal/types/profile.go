package types

import "strings"

// Sex selects the Mifflin-St Jeor constant
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

// ActivityLevel is the user's habitual activity
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// Goal is the direction of the user's weight goal
type Goal string

const (
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

// DietaryPreference is the user's diet
type DietaryPreference string

const (
	DietVegan       DietaryPreference = "vegan"
	DietVegetarian  DietaryPreference = "vegetarian"
	DietOvoLacto    DietaryPreference = "ovo-lacto"
	DietPescatarian DietaryPreference = "pescatarian"
	DietOmnivore    DietaryPreference = "omnivore"
)

// UserProfile is the immutable input to a planning run. The plan service
// clamps it into the validate bounds before planning.
type UserProfile struct {
	UserID            string            `json:"user_id"`
	Age               int               `json:"age" validate:"gte=13,lte=120"`
	Sex               Sex               `json:"sex" validate:"oneof=male female other"`
	WeightKg          float64           `json:"weight_kg" validate:"gte=30,lte=300"`
	HeightCm          float64           `json:"height_cm" validate:"gte=100,lte=250"`
	ActivityLevel     ActivityLevel     `json:"activity_level" validate:"oneof=sedentary light moderate active very_active"`
	Goal              Goal              `json:"goal" validate:"omitempty,oneof=lose maintain gain"`
	GoalRateKgPerWeek float64           `json:"goal_rate_kg_per_week"`
	DietPref          DietaryPreference `json:"diet_pref" validate:"oneof=vegan vegetarian ovo-lacto pescatarian omnivore"`
	Allergies         []string          `json:"allergies"`
	HealthConditions  []string          `json:"health_conditions,omitempty"`
	CookingSkill      int               `json:"cooking_skill"`
	MaxPrepTimeMin    *int              `json:"max_prep_time_min,omitempty"`
	WakeTime          string            `json:"wake_time,omitempty"`
	LunchTime         string            `json:"lunch_time,omitempty"`
	DinnerTime        string            `json:"dinner_time,omitempty"`
}

// WithActivity returns a copy of the profile with a different activity level
func (p UserProfile) WithActivity(level ActivityLevel) UserProfile {
	p.ActivityLevel = level
	return p
}

// NutritionTargets are derived per planning run and never persisted on their own
type NutritionTargets struct {
	BMR        float64              `json:"bmr"`
	TDEE       float64              `json:"tdee"`
	TargetKcal float64              `json:"target_kcal"`
	ProteinG   float64              `json:"protein_g"`
	CarbsG     float64              `json:"carbs_g"`
	FatG       float64              `json:"fat_g"`
	MealSplits map[MealType]float64 `json:"meal_splits"`
	// RawCarbsG is the unclamped carbohydrate formula result.
	RawCarbsG float64 `json:"raw_carbs_g"`
	// Infeasible is set when protein and fat floors leave no room for carbs.
	Infeasible bool `json:"infeasible"`
}

// UserPreferenceState is the feedback-derived personalization input
type UserPreferenceState struct {
	LikedRecipeIDs    map[string]struct{} `json:"-"`
	DislikedRecipeIDs map[string]struct{} `json:"-"`
	RegionalProfile   string              `json:"regional_profile"`
}

// DefaultRegionalProfile disables the regional boost
const DefaultRegionalProfile = "global"

// regionalProfiles are the cuisine tags a recipe may carry for the
// regional boost
var regionalProfiles = []string{
	"african", "american", "caribbean", "chinese", "east-african",
	"ethiopian", "french", "german", "greek", "indian", "indonesian",
	"italian", "japanese", "korean", "latin-american", "lebanese",
	"mediterranean", "mexican", "middle-eastern", "moroccan", "nordic",
	"persian", "south-asian", "southeast-asian", "spanish", "thai",
	"turkish", "vietnamese", "west-african",
}

// RegionalProfiles returns the known cuisine regions, sorted
func RegionalProfiles() []string {
	return append([]string(nil), regionalProfiles...)
}

// NormalizeRegionalProfile lowercases a region name and joins its words
// with hyphens so it compares equal to an ingested recipe tag
func NormalizeRegionalProfile(region string) string {
	return strings.NewReplacer(" ", "-", "_", "-").Replace(strings.ToLower(strings.TrimSpace(region)))
}

// NewUserPreferenceState returns an empty state with the global profile
func NewUserPreferenceState() UserPreferenceState {
	return UserPreferenceState{
		LikedRecipeIDs:    map[string]struct{}{},
		DislikedRecipeIDs: map[string]struct{}{},
		RegionalProfile:   DefaultRegionalProfile,
	}
}

// IsEmpty reports whether the state carries no personalization signal
func (s UserPreferenceState) IsEmpty() bool {
	return len(s.LikedRecipeIDs) == 0 && len(s.DislikedRecipeIDs) == 0 &&
		(s.RegionalProfile == "" || s.RegionalProfile == DefaultRegionalProfile)
}
