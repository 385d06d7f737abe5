package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/stagelight/showreel-backend/internal/domain/catalog"
	"github.com/stagelight/showreel-backend/internal/pkg/dbctx"
	"github.com/stagelight/showreel-backend/internal/platform/logger"
)

type CompositionRepo interface {
	Create(dbc dbctx.Context, row *types.ThumbnailComposition) (*types.ThumbnailComposition, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ThumbnailComposition, error)
	GetWithAssets(dbc dbctx.Context, id uuid.UUID) (*types.ThumbnailComposition, error)

	// TransitionToGenerating flips DRAFT or FAILED to GENERATING and reports
	// whether the transition won. A false return means the composition is
	// either mid-generation or COMPLETED; this is the single-writer gate.
	TransitionToGenerating(dbc dbctx.Context, id uuid.UUID) (bool, error)

	// ResetToDraft clears validation output and returns the composition to
	// DRAFT ahead of a regenerate.
	ResetToDraft(dbc dbctx.Context, id uuid.UUID) error

	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type compositionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompositionRepo(db *gorm.DB, baseLog *logger.Logger) CompositionRepo {
	return &compositionRepo{db: db, log: baseLog.With("repo", "CompositionRepo")}
}

func (r *compositionRepo) Create(dbc dbctx.Context, row *types.ThumbnailComposition) (*types.ThumbnailComposition, error) {
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

func (r *compositionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ThumbnailComposition, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.ThumbnailComposition
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *compositionRepo) GetWithAssets(dbc dbctx.Context, id uuid.UUID) (*types.ThumbnailComposition, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.ThumbnailComposition
	if err := t.WithContext(dbc.Ctx).
		Preload("Template").
		Preload("CompositionAssets").
		Preload("CompositionAssets.Asset").
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *compositionRepo) TransitionToGenerating(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return false, nil
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.ThumbnailComposition{}).
		Where("id = ? AND generation_status IN ?", id, []string{types.GenerationStatusDraft, types.GenerationStatusFailed}).
		Updates(map[string]interface{}{
			"generation_status": types.GenerationStatusGenerating,
			"updated_at":        time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *compositionRepo) ResetToDraft(dbc dbctx.Context, id uuid.UUID) error {
	return r.UpdateFields(dbc, id, map[string]interface{}{
		"generation_status":   types.GenerationStatusDraft,
		"validation_errors":   nil,
		"validation_warnings": nil,
		"generation_errors":   nil,
	})
}

func (r *compositionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.ThumbnailComposition{}).
		Where("id = ?", id).
		Updates(updates).Error
}
