package app

import (
	"gorm.io/gorm"

	repos "github.com/stagelight/showreel-backend/internal/data/repos/catalog"
	"github.com/stagelight/showreel-backend/internal/platform/logger"
)

type Repos struct {
	Show             repos.ShowRepo
	Episode          repos.EpisodeRepo
	Asset            repos.AssetRepo
	Template         repos.TemplateRepo
	Composition      repos.CompositionRepo
	CompositionAsset repos.CompositionAssetRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Show:             repos.NewShowRepo(db, log),
		Episode:          repos.NewEpisodeRepo(db, log),
		Asset:            repos.NewAssetRepo(db, log),
		Template:         repos.NewTemplateRepo(db, log),
		Composition:      repos.NewCompositionRepo(db, log),
		CompositionAsset: repos.NewCompositionAssetRepo(db, log),
	}
}
