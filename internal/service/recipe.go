package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/vectorindex"
)

// ErrRecipeNotFound is returned for a recipe id that is not indexed
var ErrRecipeNotFound = errors.New("recipe not found")

// RecipeService reads recipe metadata from the vector index
type RecipeService struct {
	index  vectorindex.Index
	logger *zap.Logger
}

// Ensure RecipeService implements IRecipeService
var _ IRecipeService = (*RecipeService)(nil)

// NewRecipeService creates a RecipeService
func NewRecipeService(index vectorindex.Index, logger *zap.Logger) *RecipeService {
	return &RecipeService{index: index, logger: logger}
}

// GetRecipe returns the indexed metadata for one recipe
func (s *RecipeService) GetRecipe(ctx context.Context, recipeID string) (*types.RecipeRecord, error) {
	recipeID = strings.TrimSpace(recipeID)
	if recipeID == "" {
		return nil, fmt.Errorf("%w: recipe id is required", ErrInvalidRequest)
	}

	rec, ok, err := s.index.Get(ctx, recipeID)
	if err != nil {
		s.logger.Error("failed to load recipe", zap.String("recipe_id", recipeID), zap.Error(err))
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecipeNotFound, recipeID)
	}
	return &rec, nil
}
