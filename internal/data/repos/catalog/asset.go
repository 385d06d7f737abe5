package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/stagelight/showreel-backend/internal/domain/catalog"
	"github.com/stagelight/showreel-backend/internal/pkg/dbctx"
	"github.com/stagelight/showreel-backend/internal/platform/logger"
)

// ScopeFilter selects which availability tiers an eligibility query spans.
type ScopeFilter struct {
	IncludeGlobal bool
	ShowID        *uuid.UUID
	EpisodeID     *uuid.UUID
}

func (f ScopeFilter) Empty() bool {
	return !f.IncludeGlobal && f.ShowID == nil && f.EpisodeID == nil
}

type AssetRepo interface {
	Create(dbc dbctx.Context, rows []*types.Asset) ([]*types.Asset, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Asset, error)

	GetEligible(dbc dbctx.Context, category, roleName string, filter ScopeFilter) ([]*types.Asset, error)
	GetByCategory(dbc dbctx.Context, category string, filter ScopeFilter) ([]*types.Asset, error)

	Update(dbc dbctx.Context, row *types.Asset) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error

	DistinctRoles(dbc dbctx.Context) ([]string, error)
	CountByRole(dbc dbctx.Context, role string) (int64, error)

	LinkEpisode(dbc dbctx.Context, assetID, episodeID uuid.UUID) error
	UnlinkEpisodes(dbc dbctx.Context, assetID uuid.UUID) error
	IsLinkedToEpisode(dbc dbctx.Context, assetID, episodeID uuid.UUID) (bool, error)

	SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type assetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssetRepo(db *gorm.DB, baseLog *logger.Logger) AssetRepo {
	return &assetRepo{db: db, log: baseLog.With("repo", "AssetRepo")}
}

func (r *assetRepo) Create(dbc dbctx.Context, rows []*types.Asset) ([]*types.Asset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Asset{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assetRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Asset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Asset
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// scopeConds builds the OR of the requested availability tiers. Episode
// membership goes through the episode_asset join table.
func scopeConds(filter ScopeFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if filter.IncludeGlobal {
		conds = append(conds, "asset_scope = 'GLOBAL'")
	}
	if filter.ShowID != nil {
		conds = append(conds, "(asset_scope = 'SHOW' AND show_id = ?)")
		args = append(args, *filter.ShowID)
	}
	if filter.EpisodeID != nil {
		conds = append(conds, "(asset_scope = 'EPISODE' AND id IN (SELECT asset_id FROM episode_asset WHERE episode_id = ?))")
		args = append(args, *filter.EpisodeID)
	}
	return strings.Join(conds, " OR "), args
}

// Deterministic ordering: GLOBAL scope first, then role string, then newest
// first within ties.
const eligibleOrder = "CASE asset_scope WHEN 'GLOBAL' THEN 0 WHEN 'SHOW' THEN 1 ELSE 2 END, asset_role ASC, created_at DESC"

func (r *assetRepo) GetEligible(dbc dbctx.Context, category, roleName string, filter ScopeFilter) ([]*types.Asset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.Asset{}
	if filter.Empty() {
		return out, nil
	}
	cond, args := scopeConds(filter)
	if err := t.WithContext(dbc.Ctx).
		Where("role_category = ? AND role_name = ?", category, roleName).
		Where(cond, args...).
		Order(eligibleOrder).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) GetByCategory(dbc dbctx.Context, category string, filter ScopeFilter) ([]*types.Asset, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []*types.Asset{}
	if filter.Empty() {
		return out, nil
	}
	cond, args := scopeConds(filter)
	if err := t.WithContext(dbc.Ctx).
		Where("role_category = ?", category).
		Where(cond, args...).
		Order("asset_role ASC, created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) Update(dbc dbctx.Context, row *types.Asset) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Save(row).Error
}

func (r *assetRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Asset{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *assetRepo) DistinctRoles(dbc dbctx.Context) ([]string, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	out := []string{}
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Asset{}).
		Where("asset_role IS NOT NULL").
		Distinct("asset_role").
		Order("asset_role ASC").
		Pluck("asset_role", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) CountByRole(dbc dbctx.Context, role string) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Asset{}).
		Where("asset_role = ?", role).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *assetRepo) LinkEpisode(dbc dbctx.Context, assetID, episodeID uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Asset{ID: assetID}).
		Association("Episodes").
		Append(&types.Episode{ID: episodeID})
}

func (r *assetRepo) UnlinkEpisodes(dbc dbctx.Context, assetID uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Asset{ID: assetID}).
		Association("Episodes").
		Clear()
}

func (r *assetRepo) IsLinkedToEpisode(dbc dbctx.Context, assetID, episodeID uuid.UUID) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Table("episode_asset").
		Where("asset_id = ? AND episode_id = ?", assetID, episodeID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *assetRepo) SoftDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("id IN ?", ids).Delete(&types.Asset{}).Error
}
