package db

import (
	"gorm.io/gorm"

	"github.com/stagelight/showreel-backend/internal/domain/catalog"
)

func AutoMigrateAll(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&catalog.Show{},
		&catalog.Episode{},
		&catalog.Asset{},
		&catalog.ThumbnailTemplate{},
		&catalog.ThumbnailComposition{},
		&catalog.CompositionAsset{},
	)
}

func (s *PostgresService) AutoMigrateAll() error {
	return AutoMigrateAll(s.db)
}
