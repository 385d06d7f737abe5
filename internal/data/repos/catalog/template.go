package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/stagelight/showreel-backend/internal/domain/catalog"
	"github.com/stagelight/showreel-backend/internal/pkg/dbctx"
	"github.com/stagelight/showreel-backend/internal/platform/logger"
)

type TemplateRepo interface {
	Create(dbc dbctx.Context, row *types.ThumbnailTemplate) (*types.ThumbnailTemplate, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ThumbnailTemplate, error)
	GetActiveForShow(dbc dbctx.Context, showID uuid.UUID) ([]*types.ThumbnailTemplate, error)
	Deactivate(dbc dbctx.Context, id uuid.UUID) error
}

type templateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTemplateRepo(db *gorm.DB, baseLog *logger.Logger) TemplateRepo {
	return &templateRepo{db: db, log: baseLog.With("repo", "TemplateRepo")}
}

func (r *templateRepo) Create(dbc dbctx.Context, row *types.ThumbnailTemplate) (*types.ThumbnailTemplate, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *templateRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ThumbnailTemplate, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.ThumbnailTemplate
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// GetActiveForShow returns the show's active templates plus the global ones,
// show-specific first.
func (r *templateRepo) GetActiveForShow(dbc dbctx.Context, showID uuid.UUID) ([]*types.ThumbnailTemplate, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.ThumbnailTemplate{}
	if err := t.WithContext(dbc.Ctx).
		Where("is_active = ?", true).
		Where("show_id = ? OR show_id IS NULL", showID).
		Order("show_id DESC NULLS LAST, template_name ASC, template_version DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *templateRepo) Deactivate(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.ThumbnailTemplate{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
