package app

import (
	"github.com/stagelight/showreel-backend/internal/handlers"
	"github.com/stagelight/showreel-backend/internal/platform/logger"
)

type Handlers struct {
	Asset       *handlers.AssetHandler
	Template    *handlers.TemplateHandler
	Composition *handlers.CompositionHandler
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Asset:       handlers.NewAssetHandler(s.AssetRole),
		Template:    handlers.NewTemplateHandler(s.Template),
		Composition: handlers.NewCompositionHandler(s.Composition, s.Generator),
	}
}
