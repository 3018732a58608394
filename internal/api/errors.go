package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/service"
)

// StatusFor maps service errors to HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrInvalidFeedback),
		errors.Is(err, service.ErrInvalidProgress):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrRecipeNotFound), errors.Is(err, service.ErrFeedbackNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInsufficientProgress):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
