package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/togglekeep/togglekeep/internal/api/handlers"
	"github.com/togglekeep/togglekeep/internal/api/middleware"
	"github.com/togglekeep/togglekeep/internal/config"
	"github.com/togglekeep/togglekeep/internal/database"
	"github.com/togglekeep/togglekeep/internal/metrics"
	"github.com/togglekeep/togglekeep/internal/services"
)

// Register wires up API routes and performs automatic migrations.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) error {
	if err := database.Migrate(db); err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	router.GET("/api/v1/health", handlers.HealthHandler)

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenLifetime)
	authService := services.NewAuthService(db, tokens)
	auditor := services.NewAuditor(db, services.NewAuditService(db))
	notify := services.NewNotificationService(cfg.NotifyURLs)
	flagService := services.NewFlagService(db, auditor, notify)
	userService := services.NewUserService(db, auditor)

	api := router.Group("/api/v1")
	api.Use(middleware.Authenticate(authService, tokens))

	authHandler := handlers.NewAuthHandler(authService)
	api.POST("/auth/login", middleware.RequireOperation(services.OpLogin), authHandler.Login)
	api.POST("/auth/register", middleware.RequireOperation(services.OpRegister), authHandler.Register)

	flagHandler := handlers.NewFeatureFlagsHandler(flagService)
	flags := api.Group("/feature-flags")
	flags.GET("", middleware.RequireOperation(services.OpFlagRead), flagHandler.List)
	flags.GET("/:key", middleware.RequireOperation(services.OpFlagRead), flagHandler.Get)
	flags.POST("", middleware.RequireOperation(services.OpFlagCreate), flagHandler.Create)
	flags.PUT("/:key", middleware.RequireOperation(services.OpFlagUpdate), flagHandler.Update)
	flags.DELETE("/:key", middleware.RequireOperation(services.OpFlagDelete), flagHandler.Delete)
	flags.PUT("/toggle/tag", middleware.RequireOperation(services.OpFlagToggleByTag), flagHandler.ToggleByTag)
	flags.PUT("/toggle/:key", middleware.RequireOperation(services.OpFlagToggle), flagHandler.Toggle)

	userHandler := handlers.NewUserHandler(userService)
	users := api.Group("/users")
	users.GET("", middleware.RequireOperation(services.OpUserList), userHandler.List)
	users.PUT("/:id", middleware.RequireOperation(services.OpUserEdit), userHandler.Update)
	users.DELETE("/:id", middleware.RequireOperation(services.OpUserDeactivate), userHandler.Deactivate)

	return nil
}
