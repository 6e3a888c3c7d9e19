package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/inkpress/api-go/controllers"
)

func SetupReputationRoutes(protected *gin.RouterGroup, reputationController *controllers.ReputationController) {
	identities := protected.Group("/identities")
	{
		identities.GET("/:id/reputation", reputationController.GetReputation)
		identities.GET("/:id/reputation/history", reputationController.GetReputationHistory)
	}

	protected.GET("/leaderboard", reputationController.GetLeaderboard)
}
