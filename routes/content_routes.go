package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/inkpress/api-go/controllers"
)

func SetupContentRoutes(protected *gin.RouterGroup, contentController *controllers.ContentController) {
	content := protected.Group("/content")
	{
		content.POST("/pin", contentController.RequestPin)
		content.POST("/pin/confirm", contentController.ConfirmPin)
	}
}
