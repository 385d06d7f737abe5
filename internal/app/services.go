package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/stagelight/showreel-backend/internal/platform/logger"
	"github.com/stagelight/showreel-backend/internal/platform/storage"
	"github.com/stagelight/showreel-backend/internal/services"
)

type Services struct {
	AssetRole   services.AssetRoleService
	Template    services.TemplateService
	Composition services.CompositionService
	Generator   services.GeneratorService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) (Services, error) {
	log.Info("Wiring services...")

	store, err := storage.NewBucketStore(log)
	if err != nil {
		return Services{}, fmt.Errorf("init bucket store: %w", err)
	}
	fetcher := storage.NewHTTPFetcher()

	assetRole := services.NewAssetRoleService(db, log, r.Asset, r.Episode, r.CompositionAsset)
	template := services.NewTemplateService(db, log, r.Template)
	composition := services.NewCompositionService(db, log, r.Composition, r.CompositionAsset, r.Template, r.Episode, assetRole)
	generator := services.NewGeneratorService(db, log, r.Composition, fetcher, store)

	return Services{
		AssetRole:   assetRole,
		Template:    template,
		Composition: composition,
		Generator:   generator,
	}, nil
}
