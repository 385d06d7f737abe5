package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/stagelight/showreel-backend/internal/domain/catalog"
	"github.com/stagelight/showreel-backend/internal/pkg/dbctx"
	"github.com/stagelight/showreel-backend/internal/platform/logger"
)

type ShowRepo interface {
	Create(dbc dbctx.Context, row *types.Show) (*types.Show, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Show, error)
}

type showRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShowRepo(db *gorm.DB, baseLog *logger.Logger) ShowRepo {
	return &showRepo{db: db, log: baseLog.With("repo", "ShowRepo")}
}

func (r *showRepo) Create(dbc dbctx.Context, row *types.Show) (*types.Show, error) {
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

func (r *showRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Show, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Show
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
