package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestSemanticScore(t *testing.T) {
	assert.Equal(t, 0.0, SemanticScore(-1))
	assert.Equal(t, 0.5, SemanticScore(0))
	assert.Equal(t, 1.0, SemanticScore(1))
	assert.Equal(t, 1.0, SemanticScore(1.0000001))
}

func TestCalorieProximity(t *testing.T) {
	tests := []struct {
		name   string
		recipe float64
		target float64
		want   float64
	}{
		{"over target", 600, 500, 0.8},
		{"exact", 500, 500, 1},
		{"under target", 400, 500, 0.8},
		{"far off", 1200, 500, 0},
		{"zero target", 500, 0, 0},
		{"negative target", 500, -10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalorieProximity(tt.recipe, tt.target), 1e-9)
		})
	}
}

func TestTagMatch(t *testing.T) {
	assert.Equal(t, 1.0, TagMatch([]string{"vegan", "gluten-free"}, NewTagSet("vegan")))
	assert.Equal(t, 1.0, TagMatch(nil, TagSet{}))
	assert.Equal(t, 0.5, TagMatch([]string{"vegetarian"}, NewTagSet("vegetarian", "vegan")))
	assert.Equal(t, 0.0, TagMatch([]string{"keto"}, NewTagSet("vegan")))
	assert.Equal(t, 0.5, TagMatch([]string{"vegetarian", "vegetarian"}, NewTagSet("vegetarian", "vegan")))
}

func TestSkillMatch(t *testing.T) {
	assert.Equal(t, 1.0, SkillMatch(2, 3, 0.3))
	assert.Equal(t, 1.0, SkillMatch(3, 3, 0.3))
	assert.InDelta(t, 0.7, SkillMatch(4, 3, 0.3), 1e-9)
	assert.InDelta(t, 0.4, SkillMatch(5, 3, 0.3), 1e-9)
	assert.Equal(t, 0.0, SkillMatch(5, 0, 0.3))
}

func TestPrepTimeScore(t *testing.T) {
	tests := []struct {
		name string
		prep int
		max  *int
		want float64
	}{
		{"quick no cap", 20, nil, 1},
		{"thirty no cap", 30, nil, 1},
		{"medium no cap", 45, nil, 0.8},
		{"long no cap", 90, nil, 0.6},
		{"under cap", 25, intPtr(30), 1},
		{"over cap", 45, intPtr(30), 0.5},
		{"double cap", 60, intPtr(30), 0},
		{"non-positive cap ignored", 45, intPtr(0), 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PrepTimeScore(tt.prep, tt.max), 1e-9)
		})
	}
}
