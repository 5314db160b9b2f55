package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"hirely/internal/api/middleware"
	"hirely/internal/auth"
	"hirely/internal/cache"
	"hirely/internal/events"
	"hirely/internal/store"
)

// RegisterRoutes 注册 API 路由，不包含 /api 前缀。
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	deps store.Deps,
	authService *auth.AuthService,
	redisClient redis.UniversalClient,
	listCache *cache.CompanyList,
	logger *slog.Logger,
	clamdAddr string,
	allowedOrigins []string,
) {
	publisher := events.NewPublisher(redisClient)
	jobHandler := NewJobHandler(deps, publisher, logger)
	companyHandler := NewCompanyHandler(deps, listCache, clamdAddr, logger)
	authHandler := NewAuthHandler(db, authService, redisClient, logger)
	wsHandler := NewWsHandler(redisClient, authService, logger, allowedOrigins)
	authMiddleware := middleware.AuthMiddleware(authService)

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
		}

		jobGroup := v1.Group("/jobs")
		{
			jobGroup.GET("", jobHandler.ListJobs)
			jobGroup.GET("/mine", authMiddleware, jobHandler.ListMyJobs)
			jobGroup.GET("/:id", jobHandler.GetJob)
			jobGroup.POST("", authMiddleware, jobHandler.CreateJob)
			jobGroup.PATCH("/:id/status", authMiddleware, jobHandler.UpdateHiringStatus)
			jobGroup.DELETE("/:id", authMiddleware, jobHandler.DeleteJob)
		}

		savedGroup := v1.Group("/saved-jobs")
		savedGroup.Use(authMiddleware)
		{
			savedGroup.GET("", jobHandler.ListSavedJobs)
			savedGroup.POST("/toggle", jobHandler.ToggleSave)
		}

		companyGroup := v1.Group("/companies")
		companyGroup.Use(authMiddleware)
		{
			companyGroup.GET("", companyHandler.ListCompanies)
			companyGroup.GET("/:id", companyHandler.GetCompany)
			companyGroup.POST("", companyHandler.CreateCompany)
		}
	}
}
