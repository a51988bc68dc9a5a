package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tesseract-hub/cloud-translate-service/internal/metrics"
	"github.com/tesseract-hub/cloud-translate-service/internal/middleware"
)

// RegisterRoutes mounts the API, operational endpoints and static assets
func RegisterRoutes(router *gin.Engine, handler *TranslationHandler, static *StaticHandler, rateLimiter *middleware.RateLimiter) {
	// Health endpoints
	router.GET("/health", handler.Health)
	router.GET("/livez", handler.Livez)
	router.GET("/readyz", handler.Readyz)
	router.GET("/metrics", metrics.Handler())

	router.GET("/languages", handler.GetLanguages)
	router.POST("/translate", rateLimiter.Middleware(), handler.Translate)
	router.GET("/stats", handler.GetStats)

	router.NoRoute(static.Serve)
}
