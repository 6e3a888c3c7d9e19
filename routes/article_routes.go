package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/inkpress/api-go/controllers"
)

func SetupArticleRoutes(protected *gin.RouterGroup, articleController *controllers.ArticleController) {
	articles := protected.Group("/articles")
	{
		articles.POST("", articleController.CreateArticle)
		articles.GET("", articleController.ListArticles)
		articles.GET("/:id", articleController.GetArticleDetail)
	}

	identities := protected.Group("/identities")
	{
		identities.GET("/:id/articles", articleController.GetAuthorArticles)
	}
}
