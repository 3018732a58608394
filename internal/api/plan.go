package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/middleware"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/service"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

// PlanHandler serves daily and weekly meal plans
type PlanHandler struct {
	plans  service.IPlanService
	logger *zap.Logger
}

// NewPlanHandler creates a new PlanHandler
func NewPlanHandler(plans service.IPlanService, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{plans: plans, logger: logger}
}

// RegisterRoutes registers the plan routes on an authenticated group
func (h *PlanHandler) RegisterRoutes(router *gin.RouterGroup) {
	plans := router.Group("/plans")
	{
		plans.POST("/daily", h.GenerateDaily)
		plans.POST("/weekly", h.GenerateWeekly)
	}
}

// GenerateDaily builds a one-day plan for the authenticated user.
// ?debug=true adds the ranked candidates and applied fallbacks.
func (h *PlanHandler) GenerateDaily(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.DailyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	debug := false
	if raw := c.Query("debug"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "debug must be a boolean"})
			return
		}
		debug = parsed
	}

	req.Profile.UserID = userID
	resp, err := h.plans.GenerateDailyPlan(c.Request.Context(), service.PlanRequest{
		Profile:          req.Profile,
		ActivityOverride: req.ActivityOverride,
		RecentlyUsed:     req.RecentlyUsed,
		Seed:             req.Seed,
		Strategy:         req.Strategy,
		Debug:            debug,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GenerateWeekly builds a seven-day plan for the authenticated user
func (h *PlanHandler) GenerateWeekly(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.WeeklyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Profile.UserID = userID

	plan, err := h.plans.GenerateWeeklyPlan(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, plan)
}
