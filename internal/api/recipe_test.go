package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/service"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

func TestGetRecipe(t *testing.T) {
	recipes := new(MockRecipeService)
	r := newHandlerRouter(NewRecipeHandler(recipes, zap.NewNop()))

	recipes.On("GetRecipe", mock.Anything, "dal-001").Return(&types.RecipeRecord{
		RecipeID: "dal-001",
		Title:    "Red Lentil Dal",
	}, nil)

	w := doJSON(r, http.MethodGet, "/api/v1/recipes/dal-001", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"recipe_id":"dal-001"`)
}

func TestGetRecipeErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		body string
	}{
		{"not found", fmt.Errorf("%w: r404", service.ErrRecipeNotFound), http.StatusNotFound, `{"error":"Recipe not found"}`},
		{"index down", errors.New("failed to load recipe: timeout"), http.StatusInternalServerError, `{"error":"internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipes := new(MockRecipeService)
			r := newHandlerRouter(NewRecipeHandler(recipes, zap.NewNop()))
			recipes.On("GetRecipe", mock.Anything, "r404").Return(nil, tt.err)

			w := doJSON(r, http.MethodGet, "/api/v1/recipes/r404", nil)
			assert.Equal(t, tt.want, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
