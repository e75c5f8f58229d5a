package challenges

import (
	"ctfcore/middleware"
	"ctfcore/services"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the challenge endpoints and their service
// dependencies
func RegisterRoutes(r *gin.RouterGroup, submissions *services.SubmissionService, instance *services.InstanceService) {
	submissionService = submissions
	instanceService = instance

	r.GET("/challenges/feed", SolveFeed)

	group := r.Group("/challenges")
	group.Use(middleware.AuthMiddleware())
	{
		group.GET("", GetChallenges)
		group.GET("/solves", GetSolveCounts)
		group.GET("/maxattempts", GetMaxAttempts)
		group.GET("/:id/solves", GetWhoSolved)
		group.POST("/:id/submit", SubmitFlag)
	}
}
