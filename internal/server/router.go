package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stagelight/showreel-backend/internal/handlers"
	"github.com/stagelight/showreel-backend/internal/middleware"
)

type RouterConfig struct {
	AssetHandler       *handlers.AssetHandler
	TemplateHandler    *handlers.TemplateHandler
	CompositionHandler *handlers.CompositionHandler
	RequestLogger      *middleware.RequestLogger
	AllowOrigins       []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.RequestLogger != nil {
		router.Use(cfg.RequestLogger.Handle())
	}

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Assets
		api.GET("/assets/eligible", cfg.AssetHandler.Eligible)
		api.GET("/assets/roles", cfg.AssetHandler.Roles)
		api.GET("/assets/roles/:role/stats", cfg.AssetHandler.RoleStats)
		api.GET("/assets/category/:category", cfg.AssetHandler.ByCategory)
		api.GET("/assets/:id/can-use", cfg.AssetHandler.CanUse)
		api.GET("/assets/:id/suggest-role", cfg.AssetHandler.SuggestRole)
		api.PUT("/assets/:id/role", cfg.AssetHandler.UpdateRole)
		api.PUT("/assets/:id/scope", cfg.AssetHandler.UpdateScope)

		// Templates
		api.POST("/templates", cfg.TemplateHandler.Create)
		api.GET("/templates/show/:showId", cfg.TemplateHandler.ActiveForShow)
		api.GET("/templates/:id", cfg.TemplateHandler.Get)
		api.GET("/templates/:id/preview", cfg.TemplateHandler.Preview)
		api.DELETE("/templates/:id", cfg.TemplateHandler.Deactivate)

		// Compositions
		api.POST("/compositions", cfg.CompositionHandler.Create)
		api.GET("/compositions/:id", cfg.CompositionHandler.Get)
		api.POST("/compositions/:id/assets", cfg.CompositionHandler.BindAsset)
		api.DELETE("/compositions/:id/assets/:role", cfg.CompositionHandler.UnbindAsset)
		api.POST("/compositions/:id/validate", cfg.CompositionHandler.Validate)
		api.POST("/compositions/:id/generate", cfg.CompositionHandler.Generate)
		api.POST("/compositions/:id/regenerate", cfg.CompositionHandler.Regenerate)
		api.GET("/compositions/:id/status", cfg.CompositionHandler.Status)
	}

	return router
}
