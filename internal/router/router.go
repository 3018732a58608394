// Package router assembles the gin engine for the planner API
package router

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/api"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/metrics"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/middleware"
)

const healthTimeout = 2 * time.Second

// HealthCheck reports whether a dependency is usable
type HealthCheck func(ctx context.Context) error

// Options configures SetupRouter
type Options struct {
	AllowedOrigins []string
	Validator      middleware.TokenValidator
	Gatherer       prometheus.Gatherer
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
	Checks         map[string]HealthCheck
}

// Handlers are the API handlers mounted under /api/v1. Nil handlers are
// skipped.
type Handlers struct {
	Plans       *api.PlanHandler
	Preferences *api.PreferenceHandler
	Recipes     *api.RecipeHandler
	Progress    *api.ProgressHandler
}

// SetupRouter configures the application routes
func SetupRouter(opts Options, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestLogger(opts.Logger, opts.Metrics),
		middleware.Recovery(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.ErrorHandler(opts.Logger, api.StatusFor),
	)

	router.GET("/health", healthHandler(opts.Checks))
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	// Protected routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(opts.Validator))
	if h.Plans != nil {
		h.Plans.RegisterRoutes(v1)
	}
	if h.Preferences != nil {
		h.Preferences.RegisterRoutes(v1)
	}
	if h.Recipes != nil {
		h.Recipes.RegisterRoutes(v1)
	}
	if h.Progress != nil {
		h.Progress.RegisterRoutes(v1)
	}

	return router
}

func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(names))
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": results})
	}
}
