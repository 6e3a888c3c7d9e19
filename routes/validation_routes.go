package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/inkpress/api-go/controllers"
)

func SetupValidationRoutes(public *gin.RouterGroup, validationController *controllers.ValidationController) {
	validate := public.Group("/validate")
	{
		validate.GET("/username/:username", validationController.ValidateUsername)
		validate.GET("/address/:address", validationController.ValidateAddress)
	}
}
