package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-v2/mealplanner/config"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/bootstrap"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/database"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/ingestion"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	input := flag.String("input", "", "JSON file holding an array of recipes")
	batchSize := flag.Int("batch", ingestion.DefaultBatchSize, "recipes embedded per batch")
	flag.Parse()

	if *input == "" {
		log.Fatal("-input is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl := logger.New(logger.Config{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat, Development: cfg.App.Debug})
	defer zl.Sync() //nolint:errcheck

	report, err := run(context.Background(), cfg, *input, *batchSize, zl)
	if err != nil {
		zl.Fatal("indexing failed", zap.Error(err))
	}

	fmt.Printf("Indexed %d recipes, rejected %d\n", report.Accepted, report.Rejected)
	for _, e := range report.Errors {
		fmt.Printf("  rejected: %s\n", e)
	}
	if report.Accepted == 0 && report.Rejected > 0 {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, input string, batchSize int, zl *zap.Logger) (ingestion.Report, error) {
	raws, err := readRecipes(input)
	if err != nil {
		return ingestion.Report{}, err
	}
	zl.Info("loaded raw recipes", zap.String("input", input), zap.Int("count", len(raws)))

	var db *gorm.DB
	if cfg.Index.Backend == bootstrap.BackendPgvector {
		db, err = database.NewDB(ctx, cfg.Database, zl)
		if err != nil {
			return ingestion.Report{}, fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close(db)

		if err := database.RunMigrations(db, cfg.Database.MigrationsDir, zl); err != nil {
			return ingestion.Report{}, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Embeddings are not cached here; every recipe is embedded once
	embedder := bootstrap.NewEmbedder(cfg.Embedding, nil, zl)
	index, err := bootstrap.NewIndex(ctx, cfg, db, zl)
	if err != nil {
		return ingestion.Report{}, fmt.Errorf("failed to open vector index: %w", err)
	}

	indexer := ingestion.NewIndexer(ingestion.NewPreprocessor(zl), embedder, index, batchSize, zl)
	return indexer.IndexAll(ctx, raws)
}

func readRecipes(path string) ([]ingestion.RawRecipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var raws []ingestion.RawRecipe
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return raws, nil
}
