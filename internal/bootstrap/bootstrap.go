// Package bootstrap builds the embedding provider and vector index from
// configuration. It is shared by the API server and the indexing CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-v2/mealplanner/config"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/embedding"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/vectorindex"
)

// Index backends
const (
	BackendFlat     = "flat"
	BackendPgvector = "pgvector"
)

// NewEmbedder returns the hashing provider behind the configured timeout,
// cached in Redis when client is non-nil.
func NewEmbedder(cfg config.EmbeddingConfig, client *redis.Client, logger *zap.Logger) embedding.Provider {
	var p embedding.Provider = embedding.NewHashingProvider(cfg.Dimension)
	if cfg.Timeout > 0 {
		p = embedding.WithTimeout(p, cfg.Timeout)
	}
	if client != nil {
		p = embedding.NewCachedProvider(p, client, cfg.CacheTTL, logger)
	}
	return p
}

// NewSnapshotStore picks S3 when a bucket is configured, else a local file
func NewSnapshotStore(ctx context.Context, cfg *config.Config) (vectorindex.SnapshotStore, error) {
	if cfg.Storage.Bucket == "" {
		return vectorindex.FileSnapshotStore{Path: cfg.Index.SnapshotPath}, nil
	}
	s3cfg, err := config.NewS3Config(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	return vectorindex.S3SnapshotStore{Client: s3cfg.Client, Bucket: s3cfg.BucketName, Key: s3cfg.Key}, nil
}

// NewIndex opens the configured index. A flat index is reloaded from its
// snapshot; a missing snapshot leaves it empty. db is only used by the
// pgvector backend.
func NewIndex(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *zap.Logger) (vectorindex.Index, error) {
	switch cfg.Index.Backend {
	case BackendFlat, "":
		store, err := NewSnapshotStore(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create snapshot store: %w", err)
		}
		idx := vectorindex.NewFlatIndex(cfg.Embedding.Dimension, store, logger)
		if err := idx.Reload(ctx); err != nil {
			if !errors.Is(err, vectorindex.ErrSnapshotNotFound) {
				return nil, err
			}
			logger.Warn("no index snapshot found, starting with an empty index")
		}
		return idx, nil
	case BackendPgvector:
		if db == nil {
			return nil, errors.New("pgvector index requires a database connection")
		}
		return vectorindex.NewPgvectorIndex(db, cfg.Embedding.Dimension, logger), nil
	default:
		return nil, fmt.Errorf("unknown index backend %q", cfg.Index.Backend)
	}
}
