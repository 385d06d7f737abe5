package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/stagelight/showreel-backend/internal/domain/catalog"
	"github.com/stagelight/showreel-backend/internal/pkg/dbctx"
	"github.com/stagelight/showreel-backend/internal/platform/logger"
)

type EpisodeRepo interface {
	Create(dbc dbctx.Context, row *types.Episode) (*types.Episode, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Episode, error)
	GetShowID(dbc dbctx.Context, id uuid.UUID) (*uuid.UUID, error)
}

type episodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEpisodeRepo(db *gorm.DB, baseLog *logger.Logger) EpisodeRepo {
	return &episodeRepo{db: db, log: baseLog.With("repo", "EpisodeRepo")}
}

func (r *episodeRepo) Create(dbc dbctx.Context, row *types.Episode) (*types.Episode, error) {
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

func (r *episodeRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Episode, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Episode
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *episodeRepo) GetShowID(dbc dbctx.Context, id uuid.UUID) (*uuid.UUID, error) {
	row, err := r.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	showID := row.ShowID
	return &showID, nil
}
