package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/inkpress/api-go/controllers"
)

func SetupSubscriptionRoutes(protected *gin.RouterGroup, subscriptionController *controllers.SubscriptionController) {
	authors := protected.Group("/authors")
	{
		authors.POST("/:id/subscribe", subscriptionController.Subscribe)
	}

	subscriptions := protected.Group("/subscriptions")
	{
		subscriptions.GET("", subscriptionController.ListMine)
		subscriptions.POST("/:id/cancel", subscriptionController.Cancel)
		subscriptions.GET("/:id/billing", subscriptionController.BillingStatus)
	}
}
