package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	repos "github.com/stagelight/showreel-backend/internal/data/repos/catalog"
	types "github.com/stagelight/showreel-backend/internal/domain/catalog"
	"github.com/stagelight/showreel-backend/internal/pkg/dbctx"
	"github.com/stagelight/showreel-backend/internal/platform/apierr"
	"github.com/stagelight/showreel-backend/internal/platform/logger"
	"github.com/stagelight/showreel-backend/internal/roles"
	"github.com/stagelight/showreel-backend/internal/thumbnail"
)

// CreateCompositionInput names a template and an episode and picks the output
// formats to render. Formats defaults to the full catalog when empty.
type CreateCompositionInput struct {
	EpisodeID  uuid.UUID `json:"episode_id"`
	TemplateID uuid.UUID `json:"template_id"`
	Name       string    `json:"name"`
	Formats    []string  `json:"formats"`
}

// BindAssetInput fills one role slot. LayerOrder and CustomConfig are
// optional per-binding overrides.
type BindAssetInput struct {
	AssetRole    string                  `json:"asset_role"`
	AssetID      uuid.UUID               `json:"asset_id"`
	LayerOrder   *int                    `json:"layer_order,omitempty"`
	CustomConfig *thumbnail.CustomConfig `json:"custom_config,omitempty"`
}

type CompositionService interface {
	Create(ctx context.Context, in CreateCompositionInput) (*types.ThumbnailComposition, error)
	GetWithAssets(ctx context.Context, id uuid.UUID) (*types.ThumbnailComposition, error)
	BindAsset(ctx context.Context, compositionID uuid.UUID, in BindAssetInput) (*types.CompositionAsset, error)
	UnbindAsset(ctx context.Context, compositionID uuid.UUID, assetRole string) error
	Validate(ctx context.Context, compositionID uuid.UUID) (*thumbnail.ValidationResult, error)
}

type compositionService struct {
	db       *gorm.DB
	log      *logger.Logger
	compRepo repos.CompositionRepo
	caRepo   repos.CompositionAssetRepo
	tplRepo  repos.TemplateRepo
	epRepo   repos.EpisodeRepo
	assetSvc AssetRoleService
}

func NewCompositionService(
	db *gorm.DB,
	log *logger.Logger,
	compRepo repos.CompositionRepo,
	caRepo repos.CompositionAssetRepo,
	tplRepo repos.TemplateRepo,
	epRepo repos.EpisodeRepo,
	assetSvc AssetRoleService,
) CompositionService {
	return &compositionService{
		db:       db,
		log:      log.With("service", "CompositionService"),
		compRepo: compRepo,
		caRepo:   caRepo,
		tplRepo:  tplRepo,
		epRepo:   epRepo,
		assetSvc: assetSvc,
	}
}

// jsonOf marshals a value for a jsonb column update. Serializer tags only
// apply to struct writes, not map-based Updates.
func jsonOf(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(b)
}

func (s *compositionService) Create(ctx context.Context, in CreateCompositionInput) (*types.ThumbnailComposition, error) {
	dbc := dbctx.Context{Ctx: ctx}

	ep, err := s.epRepo.GetByID(dbc, in.EpisodeID)
	if err != nil {
		return nil, err
	}
	if ep == nil {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeEpisodeNotFound, fmt.Errorf("episode %s not found", in.EpisodeID))
	}

	tpl, err := s.tplRepo.GetByID(dbc, in.TemplateID)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeTemplateNotFound, fmt.Errorf("template %s not found", in.TemplateID))
	}

	formats := in.Formats
	if len(formats) == 0 {
		formats = thumbnail.FormatNames()
	}
	for _, f := range formats {
		if _, ok := thumbnail.Formats[f]; !ok {
			return nil, apierr.New(http.StatusBadRequest, apierr.CodeInvalidFormat, fmt.Errorf("unknown format: %s", f))
		}
	}

	comp := &types.ThumbnailComposition{
		EpisodeID:        in.EpisodeID,
		TemplateID:       in.TemplateID,
		TemplateVersion:  tpl.TemplateVersion,
		CompositionName:  in.Name,
		GenerationStatus: types.GenerationStatusDraft,
		SelectedFormats:  formats,
	}
	return s.compRepo.Create(dbc, comp)
}

func (s *compositionService) GetWithAssets(ctx context.Context, id uuid.UUID) (*types.ThumbnailComposition, error) {
	comp, err := s.compRepo.GetWithAssets(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if comp == nil {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeCompositionNotFound, fmt.Errorf("composition %s not found", id))
	}
	return comp, nil
}

// BindAsset fills a role slot after checking the asset is actually eligible
// in the composition's episode context. Rebinding a filled slot replaces the
// previous asset.
func (s *compositionService) BindAsset(ctx context.Context, compositionID uuid.UUID, in BindAssetInput) (*types.CompositionAsset, error) {
	if !roles.IsValid(in.AssetRole) {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeInvalidRole, fmt.Errorf("invalid role: %s", in.AssetRole))
	}
	dbc := dbctx.Context{Ctx: ctx}
	comp, err := s.compRepo.GetByID(dbc, compositionID)
	if err != nil {
		return nil, err
	}
	if comp == nil {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeCompositionNotFound, fmt.Errorf("composition %s not found", compositionID))
	}
	if comp.GenerationStatus == types.GenerationStatusGenerating {
		return nil, apierr.New(http.StatusConflict, apierr.CodeGenerationInFlight, errors.New("composition is generating; bindings are locked"))
	}

	showID, err := s.epRepo.GetShowID(dbc, comp.EpisodeID)
	if err != nil {
		return nil, err
	}
	episodeID := comp.EpisodeID
	usable, err := s.assetSvc.CanAssetBeUsedFor(ctx, in.AssetID, in.AssetRole, ScopeContext{ShowID: showID, EpisodeID: &episodeID})
	if err != nil {
		return nil, err
	}
	if !usable.Eligible {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeInvalidScope, errors.New(usable.Reason))
	}

	row := &types.CompositionAsset{
		CompositionID: compositionID,
		AssetRole:     in.AssetRole,
		AssetID:       in.AssetID,
		LayerOrder:    in.LayerOrder,
		CustomConfig:  in.CustomConfig,
	}
	return s.caRepo.Bind(dbc, row)
}

func (s *compositionService) UnbindAsset(ctx context.Context, compositionID uuid.UUID, assetRole string) error {
	dbc := dbctx.Context{Ctx: ctx}
	comp, err := s.compRepo.GetByID(dbc, compositionID)
	if err != nil {
		return err
	}
	if comp == nil {
		return apierr.New(http.StatusNotFound, apierr.CodeCompositionNotFound, fmt.Errorf("composition %s not found", compositionID))
	}
	if comp.GenerationStatus == types.GenerationStatusGenerating {
		return apierr.New(http.StatusConflict, apierr.CodeGenerationInFlight, errors.New("composition is generating; bindings are locked"))
	}
	return s.caRepo.Unbind(dbc, compositionID, assetRole)
}

// Validate checks the current bindings against the template and persists the
// outcome on the composition row.
func (s *compositionService) Validate(ctx context.Context, compositionID uuid.UUID) (*thumbnail.ValidationResult, error) {
	comp, err := s.GetWithAssets(ctx, compositionID)
	if err != nil {
		return nil, err
	}
	if comp.Template == nil {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeTemplateNotFound, fmt.Errorf("composition %s has no template", compositionID))
	}
	result := thumbnail.ValidateComposition(comp.Template.Spec(), bindingsOf(comp))
	dbc := dbctx.Context{Ctx: ctx}
	if err := s.compRepo.UpdateFields(dbc, compositionID, map[string]interface{}{
		"validation_errors":   jsonOf(result.Errors),
		"validation_warnings": jsonOf(result.Warnings),
	}); err != nil {
		return nil, err
	}
	return &result, nil
}

func bindingsOf(comp *types.ThumbnailComposition) []thumbnail.Binding {
	out := make([]thumbnail.Binding, 0, len(comp.CompositionAssets))
	for _, ca := range comp.CompositionAssets {
		out = append(out, thumbnail.Binding{AssetRole: ca.AssetRole, AssetID: ca.AssetID})
	}
	return out
}
