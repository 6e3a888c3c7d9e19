package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/inkpress/api-go/controllers"
)

func SetupGovernanceRoutes(protected *gin.RouterGroup, governanceController *controllers.GovernanceController) {
	proposals := protected.Group("/proposals")
	{
		proposals.POST("", governanceController.CreateProposal)
		proposals.GET("", governanceController.ListProposals)
		proposals.GET("/:id", governanceController.GetProposal)
		proposals.POST("/:id/vote", governanceController.CastVote)
		proposals.POST("/:id/close", governanceController.CloseProposal)
	}
}
