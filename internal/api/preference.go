package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/middleware"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/service"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

// PreferenceHandler serves recipe feedback and personalization settings
type PreferenceHandler struct {
	prefs service.IPreferenceService
}

// NewPreferenceHandler creates a new PreferenceHandler
func NewPreferenceHandler(prefs service.IPreferenceService) *PreferenceHandler {
	return &PreferenceHandler{prefs: prefs}
}

// RegisterRoutes registers the feedback and preference routes
func (h *PreferenceHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/feedback", h.SubmitFeedback)
	router.GET("/feedback", h.ListFeedback)
	router.GET("/feedback/stats", h.FeedbackStats)
	router.DELETE("/feedback", h.DeleteAllFeedback)
	router.DELETE("/feedback/:recipe_id", h.DeleteFeedback)

	prefs := router.Group("/preferences")
	{
		prefs.GET("", h.GetPreferences)
		prefs.PUT("/regional", h.UpdateRegionalProfile)
	}
}

// SubmitFeedback records a like or dislike for a recipe
func (h *PreferenceHandler) SubmitFeedback(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fb, err := h.prefs.SubmitFeedback(c.Request.Context(), userID, req.RecipeID, *req.Liked)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, fb)
}

// ListFeedback returns the user's feedback, newest first
func (h *PreferenceHandler) ListFeedback(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	feedback, err := h.prefs.ListFeedback(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"feedback": feedback})
}

// FeedbackStats returns like and dislike counts for the user
func (h *PreferenceHandler) FeedbackStats(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	stats, err := h.prefs.FeedbackStats(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// DeleteFeedback removes the user's feedback for one recipe
func (h *PreferenceHandler) DeleteFeedback(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.prefs.DeleteFeedback(c.Request.Context(), userID, c.Param("recipe_id")); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// DeleteAllFeedback clears the user's feedback history
func (h *PreferenceHandler) DeleteAllFeedback(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	deleted, err := h.prefs.DeleteAllFeedback(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// GetPreferences returns the derived preference state
func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	state, err := h.prefs.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, service.ToResponse(state))
}

// UpdateRegionalProfile sets the user's regional cuisine preference and
// returns the updated state
func (h *PreferenceHandler) UpdateRegionalProfile(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.RegionalProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.prefs.UpdateRegionalProfile(ctx, userID, req.RegionalProfile); err != nil {
		_ = c.Error(err)
		return
	}

	state, err := h.prefs.GetPreferences(ctx, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, service.ToResponse(state))
}
