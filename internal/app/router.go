package app

import (
	"github.com/gin-gonic/gin"

	"github.com/stagelight/showreel-backend/internal/middleware"
	"github.com/stagelight/showreel-backend/internal/platform/logger"
	"github.com/stagelight/showreel-backend/internal/server"
)

func wireRouter(cfg Config, log *logger.Logger, h Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AssetHandler:       h.Asset,
		TemplateHandler:    h.Template,
		CompositionHandler: h.Composition,
		RequestLogger:      middleware.NewRequestLogger(log),
		AllowOrigins:       cfg.AllowOrigins,
	})
}
