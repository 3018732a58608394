package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/middleware"
)

const testUserID = "2f1c6a7e-9d4b-4f3a-8c55-0b7e6a1d2c3f"

func init() {
	gin.SetMode(gin.TestMode)
}

type routeRegistrar interface {
	RegisterRoutes(router *gin.RouterGroup)
}

// newTestRouter wires handlers behind a stub auth step that sets the user id
func newTestRouter(plans *MockPlanService, prefs *MockPreferenceService) *gin.Engine {
	var handlers []routeRegistrar
	if plans != nil {
		handlers = append(handlers, NewPlanHandler(plans, zap.NewNop()))
	}
	if prefs != nil {
		handlers = append(handlers, NewPreferenceHandler(prefs))
	}
	return newHandlerRouter(handlers...)
}

func newHandlerRouter(handlers ...routeRegistrar) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorHandler(zap.NewNop(), StatusFor))
	v1 := r.Group("/api/v1")
	v1.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, testUserID)
		c.Next()
	})
	for _, h := range handlers {
		h.RegisterRoutes(v1)
	}
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
