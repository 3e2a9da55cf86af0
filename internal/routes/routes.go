package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"campus_backend/internal/auth"
	"campus_backend/internal/handlers"
	"campus_backend/internal/logger"
	"campus_backend/internal/middleware"
	"campus_backend/internal/models"
)

// Guards - зависимости middleware, общие для всех групп маршрутов
type Guards struct {
	Tokens  *auth.TokenManager
	Limiter middleware.Limiter // nil - без ограничения частоты
}

// RegisterRoutes регистрирует все HTTP маршруты.
func RegisterRoutes(ginRouter *gin.Engine, h *handlers.AppHandlers, guards Guards) {
	requireAuth := middleware.AuthMiddleware(guards.Tokens)
	optionalAuth := middleware.OptionalAuth(guards.Tokens)

	ginRouter.GET("/health", h.HealthHandler.Health)
	ginRouter.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := ginRouter.Group("/api/v1")

	// Auth
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", middleware.RateLimit(guards.Limiter, "signup"), h.AuthHandler.Signup)
		authGroup.POST("/login", middleware.RateLimit(guards.Limiter, "login"), h.AuthHandler.Login)
		authGroup.GET("/me", requireAuth, h.AuthHandler.Me)
	}

	// Users
	users := api.Group("/users")
	{
		users.GET("/:userId", h.UserHandler.GetUser)
		users.GET("/:userId/likes", requireAuth, h.LikeHandler.GetUserLikes)
	}

	admin := api.Group("/admin", requireAuth)
	{
		admin.GET("/users", middleware.RequireMinRole(models.UserRoleModerator), h.UserHandler.ListUsers)
		admin.PATCH("/users/:userId/role", middleware.RequireRoles(models.UserRoleAdmin), h.UserHandler.UpdateRole)
	}

	// Likes
	likes := api.Group("/likes")
	{
		likes.GET("/me", requireAuth, h.LikeHandler.GetMyLikes)
		likes.GET("/:targetId/count", h.LikeHandler.CountTargetLikes)
		likes.GET("/:targetId/status", requireAuth, h.LikeHandler.CheckLikeStatus)
		likes.POST("/:targetId", requireAuth, middleware.RateLimit(guards.Limiter, "likes"), h.LikeHandler.LikeTarget)
		likes.DELETE("/:targetId", requireAuth, middleware.RateLimit(guards.Limiter, "likes"), h.LikeHandler.UnlikeTarget)
	}

	// Jobs
	jobs := api.Group("/jobs")
	{
		jobs.GET("", optionalAuth, h.JobHandler.ListOffers)
		jobs.GET("/saved", requireAuth, h.JobHandler.GetMySavedJobs)
		jobs.GET("/applications", requireAuth, h.JobHandler.GetMyApplications)
		jobs.GET("/:jobId", optionalAuth, h.JobHandler.GetOffer)
		jobs.POST("", requireAuth, middleware.RequireRoles(models.UserRoleRecruiter, models.UserRoleAdmin), h.JobHandler.CreateOffer)
		jobs.PATCH("/:jobId", requireAuth, h.JobHandler.UpdateOffer)
		jobs.DELETE("/:jobId", requireAuth, h.JobHandler.DeleteOffer)
		jobs.POST("/:jobId/apply", requireAuth, middleware.RequireRoles(models.UserRoleBasic, models.UserRoleAdmin), middleware.RateLimit(guards.Limiter, "apply"), h.JobHandler.ApplyToJob)
		jobs.POST("/:jobId/save", requireAuth, middleware.RateLimit(guards.Limiter, "save"), h.JobHandler.ToggleSaveJob)
		jobs.GET("/:jobId/applications", requireAuth, h.JobHandler.GetJobApplications)
	}

	// Files
	files := api.Group("/files")
	{
		files.POST("", requireAuth, middleware.RateLimit(guards.Limiter, "upload"), h.FileHandler.Upload)
		files.GET("/public/:fileId", optionalAuth, h.FileHandler.ServeFile)
		files.GET("/:fileId", optionalAuth, h.FileHandler.GetFile)
		files.DELETE("/:fileId", requireAuth, h.FileHandler.DeleteFile)
	}

	logger.Info("HTTP routes registered", "rate_limited", guards.Limiter != nil)
}
