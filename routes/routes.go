package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/inkpress/api-go/controllers"
	"github.com/inkpress/api-go/middleware"
	"github.com/inkpress/api-go/moderation"
	"github.com/inkpress/api-go/types"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	// Moderation core
	policy := types.GetModerationPolicy()
	ledger := moderation.NewLedger(db, policy)
	engine := moderation.NewEngine(db, ledger, policy, moderation.NewLogNotifier())

	// Initialize controllers
	authController := controllers.NewAuthController(db)
	articleController := controllers.NewArticleController(db)
	moderationController := controllers.NewModerationController(engine)
	reputationController := controllers.NewReputationController(db, ledger)
	governanceController := controllers.NewGovernanceController(db, engine, ledger)
	subscriptionController := controllers.NewSubscriptionController(db)
	contentController := controllers.NewContentController(db)
	validationController := controllers.NewValidationController(db)

	// Public routes
	public := r.Group("/api")
	{
		public.POST("/register", authController.Register)
		public.POST("/login", authController.Login)
		public.GET("/plans", subscriptionController.GetPlans)
		SetupValidationRoutes(public, validationController)
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/logout", authController.Logout)
		protected.POST("/refresh-token", authController.RefreshToken)
		// Identity routes
		protected.GET("/profile", authController.GetProfile)
		protected.PUT("/profile", authController.UpdateProfile)
		protected.PUT("/profile/delegate", authController.Delegate)
		protected.POST("/identities/:id/verify", authController.VerifyIdentity)

		// Setup other routes within the protected group
		SetupArticleRoutes(protected, articleController)
		SetupModerationRoutes(protected, moderationController)
		SetupReputationRoutes(protected, reputationController)
		SetupGovernanceRoutes(protected, governanceController)
		SetupSubscriptionRoutes(protected, subscriptionController)
		SetupContentRoutes(protected, contentController)
	}
}
