package teams

import (
	"ctfcore/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the team endpoints
func RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/teams")
	group.Use(middleware.AuthMiddleware())
	{
		group.GET("/solves", GetMySolves)
		group.GET("/:id/solves", GetTeamSolves)
		group.GET("/:id/fails", GetTeamFails)
	}
}
