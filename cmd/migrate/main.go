package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/config"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/database"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	dir := flag.String("dir", "", "migrations directory, overrides database.migrations_dir")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *dir != "" {
		cfg.Database.MigrationsDir = *dir
	}

	zl := logger.New(logger.Config{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat, Development: cfg.App.Debug})
	defer zl.Sync() //nolint:errcheck

	db, err := database.NewDB(context.Background(), cfg.Database, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, cfg.Database.MigrationsDir, zl); err != nil {
		zl.Fatal("failed to apply migrations", zap.Error(err))
	}
	zl.Info("all migrations applied")
}
