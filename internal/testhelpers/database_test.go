package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/models"
)

func TestSetupSQLite(t *testing.T) {
	db := SetupSQLite(t)

	fb := models.RecipeFeedback{UserID: "u1", RecipeID: "r1", Liked: true}
	require.NoError(t, db.Create(&fb).Error)
	assert.NotZero(t, fb.ID)

	pref := models.UserPreference{UserID: "u1", RegionalProfile: "mediterranean"}
	require.NoError(t, db.Create(&pref).Error)

	var loaded models.UserPreference
	require.NoError(t, db.First(&loaded, "user_id = ?", "u1").Error)
	assert.Equal(t, "mediterranean", loaded.RegionalProfile)
}

func TestSetupTestDatabase(t *testing.T) {
	db := SetupTestDatabase(t)

	var ext string
	require.NoError(t, db.Raw("SELECT extname FROM pg_extension WHERE extname = 'vector'").Scan(&ext).Error)
	assert.Equal(t, "vector", ext)
	assert.True(t, db.Migrator().HasTable(&models.RecipeEmbedding{}))
}
