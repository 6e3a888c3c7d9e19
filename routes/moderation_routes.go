package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/inkpress/api-go/controllers"
)

func SetupModerationRoutes(protected *gin.RouterGroup, moderationController *controllers.ModerationController) {
	articles := protected.Group("/articles")
	{
		articles.POST("/:id/flags", moderationController.FlagArticle)
		articles.GET("/:id/flags", moderationController.GetArticleFlags)
	}

	disputes := protected.Group("/disputes")
	{
		disputes.GET("/open", moderationController.GetOpenDisputes)
		disputes.GET("/:id", moderationController.GetDispute)
		disputes.POST("/:id/resolve", moderationController.ResolveDispute)
	}
}
