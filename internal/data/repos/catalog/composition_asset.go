package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/stagelight/showreel-backend/internal/domain/catalog"
	"github.com/stagelight/showreel-backend/internal/pkg/dbctx"
	"github.com/stagelight/showreel-backend/internal/platform/logger"
)

type CompositionAssetRepo interface {
	// Bind fills a role slot. Binding an already-filled slot replaces the
	// existing asset (upsert on the composition_id/asset_role uniqueness).
	Bind(dbc dbctx.Context, row *types.CompositionAsset) (*types.CompositionAsset, error)
	GetByComposition(dbc dbctx.Context, compositionID uuid.UUID) ([]*types.CompositionAsset, error)
	Unbind(dbc dbctx.Context, compositionID uuid.UUID, assetRole string) error
	DeleteByComposition(dbc dbctx.Context, compositionID uuid.UUID) error
	CountByRole(dbc dbctx.Context, role string) (int64, error)
}

type compositionAssetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompositionAssetRepo(db *gorm.DB, baseLog *logger.Logger) CompositionAssetRepo {
	return &compositionAssetRepo{db: db, log: baseLog.With("repo", "CompositionAssetRepo")}
}

func (r *compositionAssetRepo) Bind(dbc dbctx.Context, row *types.CompositionAsset) (*types.CompositionAsset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "composition_id"}, {Name: "asset_role"}},
			DoUpdates: clause.AssignmentColumns([]string{"asset_id", "layer_order", "custom_config", "updated_at"}),
		}).
		Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *compositionAssetRepo) GetByComposition(dbc dbctx.Context, compositionID uuid.UUID) ([]*types.CompositionAsset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.CompositionAsset{}
	if compositionID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Preload("Asset").
		Where("composition_id = ?", compositionID).
		Order("asset_role ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *compositionAssetRepo) Unbind(dbc dbctx.Context, compositionID uuid.UUID, assetRole string) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Where("composition_id = ? AND asset_role = ?", compositionID, assetRole).
		Delete(&types.CompositionAsset{}).Error
}

func (r *compositionAssetRepo) DeleteByComposition(dbc dbctx.Context, compositionID uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if compositionID == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Where("composition_id = ?", compositionID).
		Delete(&types.CompositionAsset{}).Error
}

func (r *compositionAssetRepo) CountByRole(dbc dbctx.Context, role string) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.CompositionAsset{}).
		Where("asset_role = ?", role).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
