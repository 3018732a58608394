package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/middleware"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/service"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

// ProgressHandler serves weigh-in logging and progress analysis
type ProgressHandler struct {
	progress service.IProgressService
}

// NewProgressHandler creates a new ProgressHandler
func NewProgressHandler(progress service.IProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// RegisterRoutes registers the progress routes
func (h *ProgressHandler) RegisterRoutes(router *gin.RouterGroup) {
	progress := router.Group("/progress")
	{
		progress.POST("", h.LogProgress)
		progress.GET("", h.History)
		progress.POST("/analysis", h.Analyze)
	}
}

// LogProgress records the day's weight and adherence
func (h *ProgressHandler) LogProgress(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.ProgressLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.progress.LogProgress(c.Request.Context(), userID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// History returns the user's logs for the last ?days= days
func (h *ProgressHandler) History(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 365 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 365"})
			return
		}
		days = n
	}

	logs, err := h.progress.History(c.Request.Context(), userID, days)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// Analyze compares the logged trend with the goal in the request profile
func (h *ProgressHandler) Analyze(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.ProgressAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analysis, err := h.progress.Analyze(c.Request.Context(), userID, req.Profile, req.Days)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}
