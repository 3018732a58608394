package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/config"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/api"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/bootstrap"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/database"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/health"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/logger"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/metrics"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/middleware"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/nutrition"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/retrieval"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/router"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/scoring"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/server"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/service"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/validator"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Development: cfg.App.Debug,
	})
	defer zl.Sync() //nolint:errcheck

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	db, err := database.NewDB(ctx, cfg.Database, zl)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, cfg.Database.MigrationsDir, zl); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	rdb, err := database.NewRedisClient(ctx, cfg.Redis, zl)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	embedder := bootstrap.NewEmbedder(cfg.Embedding, rdb, zl)
	index, err := bootstrap.NewIndex(ctx, cfg, db, zl)
	if err != nil {
		return fmt.Errorf("failed to open vector index: %w", err)
	}

	retriever := retrieval.NewRetriever(index, embedder, health.NewEngine(zl), retrieval.Config{
		TopK:                    cfg.Scoring.TopK,
		MaxCandidatesForScoring: cfg.Scoring.MaxCandidatesForScoring,
		PrepTimeFlexibility:     cfg.Scoring.PrepTimeFlexibility,
		SearchTimeout:           cfg.Index.SearchTimeout,
		RecencyPenalty:          cfg.Scoring.RecencyPenalty,
		SkillPenaltyPerLevel:    cfg.Scoring.SkillPenaltyPerLevel,
		Preferences: scoring.PreferenceWeights{
			LikedBoost:      cfg.Scoring.PreferenceBoostLiked,
			DislikedPenalty: cfg.Scoring.PreferencePenaltyDislike,
			RegionalBoost:   cfg.Scoring.RegionalBoost,
		},
	}, m, zl)

	calc := nutrition.NewCalculator(nutrition.WithMinDailyCalories(cfg.Planner.MinDailyCalories))
	planValidator := validator.NewValidator(cfg.Planner.MinDailyCalories, cfg.Planner.SafetyTolerance, m, zl)

	prefService := service.NewPreferenceService(db, rdb, cfg.Planner.PreferenceTTL, m, zl)
	planService := service.NewPlanService(calc, retriever, planValidator, prefService, service.PlanConfig{
		Strategy:           cfg.Scoring.Strategy,
		TopPickProbability: cfg.Planner.TopPickProbability,
	}, m, zl)

	checks := map[string]router.HealthCheck{
		"database": func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
		"index": func(ctx context.Context) error {
			_, err := index.Len(ctx)
			return err
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	engine := router.SetupRouter(router.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Validator:      middleware.NewJWTValidator(cfg.Auth.JWTSecret),
		Gatherer:       reg,
		Metrics:        m,
		Logger:         zl,
		Checks:         checks,
	}, router.Handlers{
		Plans:       api.NewPlanHandler(planService, zl),
		Preferences: api.NewPreferenceHandler(prefService),
		Recipes:     api.NewRecipeHandler(service.NewRecipeService(index, zl), zl),
		Progress:    api.NewProgressHandler(service.NewProgressService(db, calc, zl)),
	})

	srv := server.New(cfg.Server, engine, zl)
	return serve(srv, cfg, zl)
}

func serve(srv *server.Server, cfg *config.Config, zl *zap.Logger) error {
	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		zl.Info("received signal", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	zl.Info("server stopped")
	return nil
}
