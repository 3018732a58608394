package vectorindex

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	pgvector "github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/models"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

var _ BatchAdder = (*PgvectorIndex)(nil)

// PgvectorIndex keeps embeddings in Postgres and searches with the
// pgvector cosine distance operator. Filters are applied in SQL.
type PgvectorIndex struct {
	db     *gorm.DB
	dim    int
	logger *zap.Logger
}

// NewPgvectorIndex creates an index over the recipe_embeddings table
func NewPgvectorIndex(db *gorm.DB, dim int, logger *zap.Logger) *PgvectorIndex {
	return &PgvectorIndex{db: db, dim: dim, logger: logger}
}

// Add upserts a recipe and its embedding
func (p *PgvectorIndex) Add(ctx context.Context, id string, vec []float32, rec types.RecipeRecord) error {
	if len(vec) != p.dim {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vec), p.dim)
	}
	rec.RecipeID = id
	row := models.NewRecipeEmbedding(rec, vec)

	err := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "recipe_id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to upsert recipe embedding: %w", err)
	}
	return nil
}

// AddAll upserts every item in one transaction
func (p *PgvectorIndex) AddAll(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]models.RecipeEmbedding, 0, len(items))
	seen := make(map[string]int, len(items))
	for _, it := range items {
		if len(it.Vector) != p.dim {
			return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(it.Vector), p.dim)
		}
		rec := it.Record
		rec.RecipeID = it.ID
		row := models.NewRecipeEmbedding(rec, it.Vector)
		// Postgres rejects an upsert that touches the same row twice
		if pos, ok := seen[it.ID]; ok {
			rows[pos] = row
			continue
		}
		seen[it.ID] = len(rows)
		rows = append(rows, row)
	}

	err := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "recipe_id"}},
		UpdateAll: true,
	}).CreateInBatches(&rows, 100).Error
	if err != nil {
		return fmt.Errorf("failed to upsert recipe embeddings: %w", err)
	}
	return nil
}

type pgHit struct {
	models.RecipeEmbedding
	Distance float64
}

// Search orders by cosine distance and converts it back to similarity
func (p *PgvectorIndex) Search(ctx context.Context, query []float32, topK int, filter *Filter) ([]Hit, error) {
	if len(query) != p.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(query), p.dim)
	}
	if topK <= 0 {
		return []Hit{}, nil
	}

	vec := pgvector.NewVector(query)
	q := p.db.WithContext(ctx).
		Model(&models.RecipeEmbedding{}).
		Select("*, embedding <=> ? AS distance", vec)

	if filter != nil {
		if len(filter.ExcludeAllergens) > 0 {
			q = q.Where("NOT jsonb_exists_any(allergen_tags, ?)", pq.Array(filter.ExcludeAllergens))
		}
		if len(filter.AnyDietaryTags) > 0 {
			q = q.Where("jsonb_exists_any(dietary_tags, ?)", pq.Array(filter.AnyDietaryTags))
		}
	}

	var rows []pgHit
	err := q.Order(clause.OrderBy{
		Expression: clause.Expr{SQL: "embedding <=> ?", Vars: []interface{}{vec}},
	}).Order("recipe_id").Limit(topK).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search recipe embeddings: %w", err)
	}

	hits := make([]Hit, 0, len(rows))
	for _, r := range rows {
		hits = append(hits, Hit{
			ID:         r.RecipeID,
			Similarity: 1 - r.Distance,
			Record:     r.Record(),
		})
	}
	return hits, nil
}

// Get loads one recipe's metadata
func (p *PgvectorIndex) Get(ctx context.Context, id string) (types.RecipeRecord, bool, error) {
	var row models.RecipeEmbedding
	err := p.db.WithContext(ctx).Omit("embedding").First(&row, "recipe_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.RecipeRecord{}, false, nil
	}
	if err != nil {
		return types.RecipeRecord{}, false, fmt.Errorf("failed to get recipe embedding: %w", err)
	}
	return row.Record(), true, nil
}

// Len counts indexed recipes
func (p *PgvectorIndex) Len(ctx context.Context) (int, error) {
	var n int64
	if err := p.db.WithContext(ctx).Model(&models.RecipeEmbedding{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count recipe embeddings: %w", err)
	}
	return int(n), nil
}

// Persist is a no-op: every Add is already durable
func (p *PgvectorIndex) Persist(ctx context.Context) error {
	return nil
}

// Reload checks connectivity; rows are always read fresh
func (p *PgvectorIndex) Reload(ctx context.Context) error {
	n, err := p.Len(ctx)
	if err != nil {
		return err
	}
	p.logger.Info("pgvector index ready", zap.Int("recipes", n))
	return nil
}
