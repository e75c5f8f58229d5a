package v1

import (
	"ctfcore/handlers/challenges"
	"ctfcore/handlers/teams"
	"ctfcore/middleware"
	"ctfcore/services"

	"github.com/gin-gonic/gin"
)

// Register the endpoints for the v1 API
func Register(r *gin.Engine, submissions *services.SubmissionService, instance *services.InstanceService) {
	v1 := r.Group("/api/v1")

	// Add metrics middleware to all routes
	v1.Use(middleware.MetricsMiddleware())

	rateLimiter := middleware.NewRateLimiter(10000, 1500) // 100 requests per second, 150 burst
	v1.Use(middleware.RateLimiterMiddleware(rateLimiter))

	RegisterPingRoutes(v1)
	challenges.RegisterRoutes(v1, submissions, instance)
	teams.RegisterRoutes(v1)

	// Register metrics endpoint
	RegisterMetricsRoutes(v1)
}
