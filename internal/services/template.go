package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	repos "github.com/stagelight/showreel-backend/internal/data/repos/catalog"
	types "github.com/stagelight/showreel-backend/internal/domain/catalog"
	"github.com/stagelight/showreel-backend/internal/pkg/dbctx"
	"github.com/stagelight/showreel-backend/internal/platform/apierr"
	"github.com/stagelight/showreel-backend/internal/platform/logger"
	"github.com/stagelight/showreel-backend/internal/thumbnail"
)

// LayoutPreview is a template's layout resolved against one output format,
// with every rectangle already rescaled to the format's pixel dimensions.
type LayoutPreview struct {
	Format        string                         `json:"format"`
	Width         int                            `json:"width"`
	Height        int                            `json:"height"`
	Layers        map[string]thumbnail.LayerRect `json:"layers"`
	RequiredRoles []string                       `json:"required_roles"`
	OptionalRoles []string                       `json:"optional_roles"`
}

type TemplateService interface {
	Create(ctx context.Context, tpl *types.ThumbnailTemplate) (*types.ThumbnailTemplate, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.ThumbnailTemplate, error)
	ActiveForShow(ctx context.Context, showID uuid.UUID) ([]*types.ThumbnailTemplate, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	PreviewLayout(ctx context.Context, templateID uuid.UUID, format string) (*LayoutPreview, error)
}

type templateService struct {
	db      *gorm.DB
	log     *logger.Logger
	tplRepo repos.TemplateRepo
}

func NewTemplateService(db *gorm.DB, log *logger.Logger, tplRepo repos.TemplateRepo) TemplateService {
	return &templateService{
		db:      db,
		log:     log.With("service", "TemplateService"),
		tplRepo: tplRepo,
	}
}

// Create persists a template after checking its structure. A template with
// unparseable roles or a degenerate canvas never reaches the database.
func (s *templateService) Create(ctx context.Context, tpl *types.ThumbnailTemplate) (*types.ThumbnailTemplate, error) {
	if tpl == nil {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeInvalidTemplate, errors.New("empty template"))
	}
	if strings.TrimSpace(tpl.TemplateName) == "" {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeInvalidTemplate, errors.New("template name is required"))
	}
	if tpl.TemplateVersion == "" {
		tpl.TemplateVersion = "v1"
	}
	problems := thumbnail.ValidateTemplateConfig(tpl.Spec(), tpl.LayoutConfig, tpl.FormatOverrides)
	if len(problems) > 0 {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeInvalidTemplate, errors.New(strings.Join(problems, "; ")))
	}
	return s.tplRepo.Create(dbctx.Context{Ctx: ctx}, tpl)
}

func (s *templateService) GetByID(ctx context.Context, id uuid.UUID) (*types.ThumbnailTemplate, error) {
	tpl, err := s.tplRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeTemplateNotFound, fmt.Errorf("template %s not found", id))
	}
	return tpl, nil
}

func (s *templateService) ActiveForShow(ctx context.Context, showID uuid.UUID) ([]*types.ThumbnailTemplate, error) {
	return s.tplRepo.GetActiveForShow(dbctx.Context{Ctx: ctx}, showID)
}

func (s *templateService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.tplRepo.Deactivate(dbctx.Context{Ctx: ctx}, id)
}

// PreviewLayout resolves the template's layout for one format without
// rendering anything, so an editor can show slot outlines.
func (s *templateService) PreviewLayout(ctx context.Context, templateID uuid.UUID, format string) (*LayoutPreview, error) {
	f, ok := thumbnail.Formats[format]
	if !ok {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeInvalidFormat, fmt.Errorf("unknown format: %s", format))
	}
	tpl, err := s.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	merged := thumbnail.LayoutForFormat(tpl.LayoutConfig, tpl.FormatOverrides, format)
	layers := make(map[string]thumbnail.LayerRect, len(merged.Layers))
	for role, rect := range merged.Layers {
		layers[role] = thumbnail.ScaleRect(rect, merged.BaseWidth, merged.BaseHeight, f.Width, f.Height)
	}
	return &LayoutPreview{
		Format:        format,
		Width:         f.Width,
		Height:        f.Height,
		Layers:        layers,
		RequiredRoles: tpl.RequiredRoles,
		OptionalRoles: tpl.OptionalRoles,
	}, nil
}
