package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	repos "github.com/stagelight/showreel-backend/internal/data/repos/catalog"
	types "github.com/stagelight/showreel-backend/internal/domain/catalog"
	"github.com/stagelight/showreel-backend/internal/pkg/dbctx"
	"github.com/stagelight/showreel-backend/internal/platform/apierr"
	"github.com/stagelight/showreel-backend/internal/platform/logger"
	"github.com/stagelight/showreel-backend/internal/roles"
)

// ScopeContext carries the show/episode a caller is working in and whether
// GLOBAL assets are included. A context that spans no tier at all cannot
// answer an eligibility query.
type ScopeContext struct {
	IncludeGlobal bool
	ShowID        *uuid.UUID
	EpisodeID     *uuid.UUID
}

// UsableResult answers "can this asset fill that role here".
type UsableResult struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

type RoleUsage struct {
	Role             string `json:"role"`
	AssetCount       int64  `json:"asset_count"`
	CompositionCount int64  `json:"composition_count"`
}

type AssetRoleService interface {
	GetEligibleAssets(ctx context.Context, role string, sc ScopeContext) ([]*types.Asset, error)
	GetAssetsByCategory(ctx context.Context, category string, sc ScopeContext) ([]*types.Asset, error)
	CanAssetBeUsedFor(ctx context.Context, assetID uuid.UUID, role string, sc ScopeContext) (*UsableResult, error)
	UpdateAssetRole(ctx context.Context, assetID uuid.UUID, role *string) (*types.Asset, error)
	UpdateAssetScope(ctx context.Context, assetID uuid.UUID, scope string, sc ScopeContext) (*types.Asset, error)
	SuggestRole(ctx context.Context, assetID uuid.UUID) (string, error)
	RoleUsageStats(ctx context.Context) ([]RoleUsage, error)
	RoleUsageFor(ctx context.Context, role string) (*RoleUsage, error)
}

type assetRoleService struct {
	db        *gorm.DB
	log       *logger.Logger
	assetRepo repos.AssetRepo
	epRepo    repos.EpisodeRepo
	caRepo    repos.CompositionAssetRepo
}

func NewAssetRoleService(db *gorm.DB, log *logger.Logger, assetRepo repos.AssetRepo, epRepo repos.EpisodeRepo, caRepo repos.CompositionAssetRepo) AssetRoleService {
	return &assetRoleService{
		db:        db,
		log:       log.With("service", "AssetRoleService"),
		assetRepo: assetRepo,
		epRepo:    epRepo,
		caRepo:    caRepo,
	}
}

func scopeFilter(sc ScopeContext) repos.ScopeFilter {
	return repos.ScopeFilter{IncludeGlobal: sc.IncludeGlobal, ShowID: sc.ShowID, EpisodeID: sc.EpisodeID}
}

func (s *assetRoleService) GetEligibleAssets(ctx context.Context, role string, sc ScopeContext) ([]*types.Asset, error) {
	parsed := roles.Parse(role)
	if parsed == nil {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeInvalidRole, fmt.Errorf("invalid role: %s", role))
	}
	filter := scopeFilter(sc)
	if filter.Empty() {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeMissingContext,
			fmt.Errorf("eligibility query excludes GLOBAL assets but names no show or episode"))
	}
	dbc := dbctx.Context{Ctx: ctx}
	return s.assetRepo.GetEligible(dbc, parsed.Category, parsed.Role, filter)
}

func (s *assetRoleService) GetAssetsByCategory(ctx context.Context, category string, sc ScopeContext) ([]*types.Asset, error) {
	if !roles.Category(category).Valid() {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeInvalidCategory, fmt.Errorf("invalid category: %s", category))
	}
	filter := scopeFilter(sc)
	if filter.Empty() {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeMissingContext,
			fmt.Errorf("category query excludes GLOBAL assets but names no show or episode"))
	}
	dbc := dbctx.Context{Ctx: ctx}
	return s.assetRepo.GetByCategory(dbc, category, filter)
}

func (s *assetRoleService) CanAssetBeUsedFor(ctx context.Context, assetID uuid.UUID, role string, sc ScopeContext) (*UsableResult, error) {
	if !roles.IsValid(role) {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeInvalidRole, fmt.Errorf("invalid role: %s", role))
	}
	dbc := dbctx.Context{Ctx: ctx}
	asset, err := s.assetRepo.GetByID(dbc, assetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeAssetNotFound, fmt.Errorf("asset %s not found", assetID))
	}
	if asset.AssetRole == nil || !roles.MatchesForEligibility(*asset.AssetRole, role) {
		return &UsableResult{Eligible: false, Reason: "Asset role does not match requested role"}, nil
	}
	switch roles.Scope(asset.AssetScope) {
	case roles.ScopeGlobal:
		return &UsableResult{Eligible: true}, nil
	case roles.ScopeShow:
		if sc.ShowID == nil {
			return &UsableResult{Eligible: false, Reason: "Show-scoped asset requires showId context"}, nil
		}
		if asset.ShowID == nil || *asset.ShowID != *sc.ShowID {
			return &UsableResult{Eligible: false, Reason: "Asset belongs to a different show"}, nil
		}
		return &UsableResult{Eligible: true}, nil
	case roles.ScopeEpisode:
		if sc.EpisodeID == nil {
			return &UsableResult{Eligible: false, Reason: "Episode-scoped asset requires episodeId context"}, nil
		}
		linked, err := s.assetRepo.IsLinkedToEpisode(dbc, asset.ID, *sc.EpisodeID)
		if err != nil {
			return nil, err
		}
		if !linked {
			return &UsableResult{Eligible: false, Reason: "Asset not linked to this episode"}, nil
		}
		return &UsableResult{Eligible: true}, nil
	}
	return &UsableResult{Eligible: false, Reason: fmt.Sprintf("Unknown asset scope: %s", asset.AssetScope)}, nil
}

// UpdateAssetRole assigns or clears an asset's role. The parsed category and
// role segments are stored alongside the full string so eligibility queries
// never match across role boundaries (CHAR.HOST vs CHAR.HOSTESS).
func (s *assetRoleService) UpdateAssetRole(ctx context.Context, assetID uuid.UUID, role *string) (*types.Asset, error) {
	dbc := dbctx.Context{Ctx: ctx}
	asset, err := s.assetRepo.GetByID(dbc, assetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeAssetNotFound, fmt.Errorf("asset %s not found", assetID))
	}

	updates := map[string]interface{}{}
	if role == nil || *role == "" {
		updates["asset_role"] = nil
		updates["role_category"] = ""
		updates["role_name"] = ""
	} else {
		parsed := roles.Parse(*role)
		if parsed == nil {
			return nil, apierr.New(http.StatusBadRequest, apierr.CodeInvalidRole, fmt.Errorf("invalid role: %s", *role))
		}
		updates["asset_role"] = *role
		updates["role_category"] = parsed.Category
		updates["role_name"] = parsed.Role
	}
	if err := s.assetRepo.UpdateFields(dbc, assetID, updates); err != nil {
		return nil, err
	}
	return s.assetRepo.GetByID(dbc, assetID)
}

// UpdateAssetScope moves an asset between availability tiers. SHOW requires a
// show, EPISODE requires an episode (the show is derived from it), and GLOBAL
// clears both associations.
func (s *assetRoleService) UpdateAssetScope(ctx context.Context, assetID uuid.UUID, scope string, sc ScopeContext) (*types.Asset, error) {
	if !roles.Scope(scope).Valid() {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeInvalidScope, fmt.Errorf("invalid scope: %s", scope))
	}
	dbc := dbctx.Context{Ctx: ctx}
	asset, err := s.assetRepo.GetByID(dbc, assetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeAssetNotFound, fmt.Errorf("asset %s not found", assetID))
	}

	err = s.inTx(ctx, func(txc dbctx.Context) error {
		switch roles.Scope(scope) {
		case roles.ScopeGlobal:
			if err := s.assetRepo.UnlinkEpisodes(txc, assetID); err != nil {
				return err
			}
			return s.assetRepo.UpdateFields(txc, assetID, map[string]interface{}{
				"asset_scope": string(roles.ScopeGlobal),
				"show_id":     nil,
			})
		case roles.ScopeShow:
			if sc.ShowID == nil {
				return apierr.New(http.StatusBadRequest, apierr.CodeShowRequiredForScope, fmt.Errorf("SHOW scope requires a showId"))
			}
			if err := s.assetRepo.UnlinkEpisodes(txc, assetID); err != nil {
				return err
			}
			return s.assetRepo.UpdateFields(txc, assetID, map[string]interface{}{
				"asset_scope": string(roles.ScopeShow),
				"show_id":     *sc.ShowID,
			})
		case roles.ScopeEpisode:
			if sc.EpisodeID == nil {
				return apierr.New(http.StatusBadRequest, apierr.CodeMissingContext, fmt.Errorf("EPISODE scope requires an episodeId"))
			}
			showID, err := s.epRepo.GetShowID(txc, *sc.EpisodeID)
			if err != nil {
				return err
			}
			if showID == nil {
				return apierr.New(http.StatusNotFound, apierr.CodeEpisodeNotFound, fmt.Errorf("episode %s not found", *sc.EpisodeID))
			}
			if err := s.assetRepo.LinkEpisode(txc, assetID, *sc.EpisodeID); err != nil {
				return err
			}
			return s.assetRepo.UpdateFields(txc, assetID, map[string]interface{}{
				"asset_scope": string(roles.ScopeEpisode),
				"show_id":     *showID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.assetRepo.GetByID(dbc, assetID)
}

// inTx runs fn inside a transaction. A nil db means the caller owns the
// transaction boundary (the repos fall back to their own handle).
func (s *assetRoleService) inTx(ctx context.Context, fn func(dbctx.Context) error) error {
	if s.db == nil {
		return fn(dbctx.Context{Ctx: ctx})
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

// SuggestRole guesses a role from the asset's type, name, and the group and
// purpose hints in its metadata. Returns "" when nothing fits.
func (s *assetRoleService) SuggestRole(ctx context.Context, assetID uuid.UUID) (string, error) {
	dbc := dbctx.Context{Ctx: ctx}
	asset, err := s.assetRepo.GetByID(dbc, assetID)
	if err != nil {
		return "", err
	}
	if asset == nil {
		return "", apierr.New(http.StatusNotFound, apierr.CodeAssetNotFound, fmt.Errorf("asset %s not found", assetID))
	}
	var meta struct {
		AssetGroup string `json:"asset_group"`
		Purpose    string `json:"purpose"`
	}
	if len(asset.Metadata) > 0 {
		if err := json.Unmarshal(asset.Metadata, &meta); err != nil {
			s.log.Warn("unparseable asset metadata", "asset_id", assetID, "error", err)
		}
	}
	return roles.SuggestRole(asset.AssetType, meta.AssetGroup, meta.Purpose, asset.Name), nil
}

func (s *assetRoleService) RoleUsageStats(ctx context.Context) ([]RoleUsage, error) {
	dbc := dbctx.Context{Ctx: ctx}
	distinct, err := s.assetRepo.DistinctRoles(dbc)
	if err != nil {
		return nil, err
	}
	out := make([]RoleUsage, 0, len(distinct))
	for _, role := range distinct {
		usage, err := s.RoleUsageFor(ctx, role)
		if err != nil {
			return nil, err
		}
		out = append(out, *usage)
	}
	return out, nil
}

// RoleUsageFor counts one role's asset and composition usage without walking
// the whole catalog.
func (s *assetRoleService) RoleUsageFor(ctx context.Context, role string) (*RoleUsage, error) {
	dbc := dbctx.Context{Ctx: ctx}
	assetCount, err := s.assetRepo.CountByRole(dbc, role)
	if err != nil {
		return nil, err
	}
	compCount, err := s.caRepo.CountByRole(dbc, role)
	if err != nil {
		return nil, err
	}
	return &RoleUsage{Role: role, AssetCount: assetCount, CompositionCount: compCount}, nil
}
