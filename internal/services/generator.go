package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	stddraw "image/draw"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	repos "github.com/stagelight/showreel-backend/internal/data/repos/catalog"
	types "github.com/stagelight/showreel-backend/internal/domain/catalog"
	"github.com/stagelight/showreel-backend/internal/pkg/dbctx"
	"github.com/stagelight/showreel-backend/internal/platform/apierr"
	"github.com/stagelight/showreel-backend/internal/platform/logger"
	"github.com/stagelight/showreel-backend/internal/platform/storage"
	"github.com/stagelight/showreel-backend/internal/roles"
	"github.com/stagelight/showreel-backend/internal/thumbnail"
)

const layerFetchTimeout = 30 * time.Second

// GenerateResult is the outcome of one generation run. Success means at least
// one format rendered; individual format failures land in Errors.
type GenerateResult struct {
	Success          bool              `json:"success"`
	Status           string            `json:"status"`
	GeneratedFormats map[string]string `json:"generated_formats"`
	Errors           []string          `json:"errors,omitempty"`
	Warnings         []string          `json:"warnings,omitempty"`
}

// GenerationState is the persisted view a status poll returns.
type GenerationState struct {
	Status             string            `json:"status"`
	GeneratedFormats   map[string]string `json:"generated_formats,omitempty"`
	ValidationErrors   []string          `json:"validation_errors,omitempty"`
	ValidationWarnings []string          `json:"validation_warnings,omitempty"`
	GenerationErrors   []string          `json:"generation_errors,omitempty"`
}

type GeneratorService interface {
	Generate(ctx context.Context, compositionID uuid.UUID, formats []string) (*GenerateResult, error)
	Regenerate(ctx context.Context, compositionID uuid.UUID) (*GenerateResult, error)
	Status(ctx context.Context, compositionID uuid.UUID) (*GenerationState, error)
}

type generatorService struct {
	db       *gorm.DB
	log      *logger.Logger
	compRepo repos.CompositionRepo
	fetcher  storage.Fetcher
	store    storage.ArtifactStore
}

func NewGeneratorService(db *gorm.DB, log *logger.Logger, compRepo repos.CompositionRepo, fetcher storage.Fetcher, store storage.ArtifactStore) GeneratorService {
	return &generatorService{
		db:       db,
		log:      log.With("service", "GeneratorService"),
		compRepo: compRepo,
		fetcher:  fetcher,
		store:    store,
	}
}

func (s *generatorService) Generate(ctx context.Context, compositionID uuid.UUID, formats []string) (*GenerateResult, error) {
	dbc := dbctx.Context{Ctx: ctx}
	comp, err := s.compRepo.GetWithAssets(dbc, compositionID)
	if err != nil {
		return nil, err
	}
	if comp == nil {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeCompositionNotFound, fmt.Errorf("composition %s not found", compositionID))
	}
	tpl := comp.Template
	if tpl == nil {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeTemplateNotFound, fmt.Errorf("composition %s has no template", compositionID))
	}

	if len(formats) == 0 {
		formats = comp.SelectedFormats
	}
	if len(formats) == 0 {
		formats = thumbnail.FormatNames()
	}
	for _, f := range formats {
		if _, ok := thumbnail.Formats[f]; !ok {
			return nil, apierr.New(http.StatusBadRequest, apierr.CodeInvalidFormat, fmt.Errorf("unknown format: %s", f))
		}
	}

	// Single-writer gate. Losing it means another run holds GENERATING or the
	// composition is already COMPLETED.
	won, err := s.compRepo.TransitionToGenerating(dbc, compositionID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, apierr.New(http.StatusConflict, apierr.CodeGenerationInFlight, fmt.Errorf("composition %s is not in a generatable state", compositionID))
	}

	validation := thumbnail.ValidateComposition(tpl.Spec(), bindingsOf(comp))
	if !validation.Valid {
		if err := s.compRepo.UpdateFields(dbc, compositionID, map[string]interface{}{
			"generation_status":   types.GenerationStatusFailed,
			"validation_errors":   jsonOf(validation.Errors),
			"validation_warnings": jsonOf(validation.Warnings),
		}); err != nil {
			s.markFailed(dbc, compositionID)
			return nil, err
		}
		return &GenerateResult{
			Success:          false,
			Status:           types.GenerationStatusFailed,
			GeneratedFormats: map[string]string{},
			Errors:           validation.Errors,
			Warnings:         validation.Warnings,
		}, nil
	}

	if err := s.compRepo.UpdateFields(dbc, compositionID, map[string]interface{}{
		"selected_formats":    jsonOf(formats),
		"validation_errors":   jsonOf([]string{}),
		"validation_warnings": jsonOf(validation.Warnings),
	}); err != nil {
		s.markFailed(dbc, compositionID)
		return nil, err
	}

	var (
		mu        sync.Mutex
		generated = map[string]string{}
		renderErr []string
		warnings  = append([]string{}, validation.Warnings...)
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, format := range formats {
		format := format
		g.Go(func() error {
			url, warns, err := s.renderAndUpload(gctx, comp, tpl, format)
			mu.Lock()
			defer mu.Unlock()
			warnings = append(warnings, warns...)
			if err != nil {
				s.log.Error("format render failed", "composition_id", compositionID, "format", format, "error", err)
				renderErr = append(renderErr, fmt.Sprintf("%s: %v", format, err))
				return nil
			}
			generated[format] = url
			// Persist incrementally so a crash mid-run keeps finished formats.
			return s.compRepo.UpdateFields(dbc, compositionID, map[string]interface{}{
				"generated_formats": jsonOf(generated),
			})
		})
	}
	if err := g.Wait(); err != nil {
		s.markFailed(dbc, compositionID)
		return nil, err
	}

	status := types.GenerationStatusCompleted
	if len(generated) == 0 {
		status = types.GenerationStatusFailed
	}
	if err := s.compRepo.UpdateFields(dbc, compositionID, map[string]interface{}{
		"generation_status":   status,
		"generated_formats":   jsonOf(generated),
		"generation_errors":   jsonOf(renderErr),
		"validation_warnings": jsonOf(warnings),
	}); err != nil {
		s.markFailed(dbc, compositionID)
		return nil, err
	}

	return &GenerateResult{
		Success:          status == types.GenerationStatusCompleted,
		Status:           status,
		GeneratedFormats: generated,
		Errors:           renderErr,
		Warnings:         warnings,
	}, nil
}

// Regenerate re-runs the previously selected formats from scratch.
func (s *generatorService) Regenerate(ctx context.Context, compositionID uuid.UUID) (*GenerateResult, error) {
	dbc := dbctx.Context{Ctx: ctx}
	comp, err := s.compRepo.GetByID(dbc, compositionID)
	if err != nil {
		return nil, err
	}
	if comp == nil {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeCompositionNotFound, fmt.Errorf("composition %s not found", compositionID))
	}
	if comp.GenerationStatus == types.GenerationStatusGenerating {
		return nil, apierr.New(http.StatusConflict, apierr.CodeGenerationInFlight, errors.New("composition is already generating"))
	}
	if err := s.compRepo.ResetToDraft(dbc, compositionID); err != nil {
		return nil, err
	}
	return s.Generate(ctx, compositionID, comp.SelectedFormats)
}

func (s *generatorService) Status(ctx context.Context, compositionID uuid.UUID) (*GenerationState, error) {
	comp, err := s.compRepo.GetByID(dbctx.Context{Ctx: ctx}, compositionID)
	if err != nil {
		return nil, err
	}
	if comp == nil {
		return nil, apierr.New(http.StatusNotFound, apierr.CodeCompositionNotFound, fmt.Errorf("composition %s not found", compositionID))
	}
	return &GenerationState{
		Status:             comp.GenerationStatus,
		GeneratedFormats:   comp.GeneratedFormats,
		ValidationErrors:   comp.ValidationErrors,
		ValidationWarnings: comp.ValidationWarnings,
		GenerationErrors:   comp.GenerationErrors,
	}, nil
}

// markFailed is the best-effort escape hatch for error exits after the
// composition has been moved to GENERATING. Leaving it there would make the
// status gate reject every later run.
func (s *generatorService) markFailed(dbc dbctx.Context, id uuid.UUID) {
	if err := s.compRepo.UpdateFields(dbc, id, map[string]interface{}{
		"generation_status": types.GenerationStatusFailed,
	}); err != nil {
		s.log.Error("could not mark composition FAILED", "composition_id", id, "error", err)
	}
}

type resolvedLayer struct {
	role string
	url  string
	rect thumbnail.LayerRect
	z    int
}

// resolveLayers maps each binding onto its rescaled rectangle for one format.
// A binding whose role has no layout layer is skipped with a warning.
func resolveLayers(comp *types.ThumbnailComposition, tpl *types.ThumbnailTemplate, format string) ([]resolvedLayer, []string) {
	f := thumbnail.Formats[format]
	merged := thumbnail.LayoutForFormat(tpl.LayoutConfig, tpl.FormatOverrides, format)

	var out []resolvedLayer
	var warnings []string
	for i := range comp.CompositionAssets {
		ca := &comp.CompositionAssets[i]
		rect, ok := merged.Layers[ca.AssetRole]
		if !ok {
			// Variant-agnostic fallback: a CHAR.HOST.SECONDARY binding may use
			// the CHAR.HOST.PRIMARY layer. Keys are walked in sorted order so
			// the pick is stable when several variants share category.role.
			keys := make([]string, 0, len(merged.Layers))
			for role := range merged.Layers {
				keys = append(keys, role)
			}
			sort.Strings(keys)
			for _, role := range keys {
				if roles.MatchesForEligibility(role, ca.AssetRole) {
					rect, ok = merged.Layers[role], true
					break
				}
			}
		}
		if !ok {
			warnings = append(warnings, fmt.Sprintf("No layout layer for role: %s", ca.AssetRole))
			continue
		}
		scaled := thumbnail.ScaleRect(rect, merged.BaseWidth, merged.BaseHeight, f.Width, f.Height)
		eff := thumbnail.EffectiveLayer(scaled, ca.CustomConfig)
		if ca.Asset == nil || ca.Asset.BestURL() == "" {
			warnings = append(warnings, fmt.Sprintf("No source image for role: %s", ca.AssetRole))
			continue
		}
		out = append(out, resolvedLayer{
			role: ca.AssetRole,
			url:  ca.Asset.BestURL(),
			rect: eff,
			z:    thumbnail.EffectiveZIndex(ca.LayerOrder, eff),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].z != out[j].z {
			return out[i].z < out[j].z
		}
		return out[i].role < out[j].role
	})
	return out, warnings
}

func (s *generatorService) renderAndUpload(ctx context.Context, comp *types.ThumbnailComposition, tpl *types.ThumbnailTemplate, format string) (string, []string, error) {
	f := thumbnail.Formats[format]
	layers, warnings := resolveLayers(comp, tpl, format)

	dc := gg.NewContext(f.Width, f.Height)

	for _, layer := range layers {
		img, err := s.fetchImage(ctx, layer.url)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Skipping layer %s: %v", layer.role, err))
			continue
		}
		drawLayer(dc, img, layer.rect)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return "", warnings, fmt.Errorf("encode png: %w", err)
	}

	key := fmt.Sprintf("thumbnails/%s/%s/%s_%d.png",
		comp.EpisodeID, comp.ID, strings.ToLower(format), time.Now().UnixNano())
	url, err := s.store.Upload(ctx, key, "image/png", buf.Bytes())
	if err != nil {
		return "", warnings, fmt.Errorf("upload %s: %w", key, err)
	}
	return url, warnings, nil
}

func (s *generatorService) fetchImage(ctx context.Context, url string) (image.Image, error) {
	fctx, cancel := context.WithTimeout(ctx, layerFetchTimeout)
	defer cancel()
	raw, err := s.fetcher.Fetch(fctx, url)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

// drawLayer scales the source into the rectangle preserving aspect ratio,
// applies opacity, and draws it with the rectangle's rotation about its
// center. Degenerate rectangles are ignored.
func drawLayer(dc *gg.Context, src image.Image, rect thumbnail.LayerRect) {
	if rect.Width <= 0 || rect.Height <= 0 {
		return
	}
	fitted := fitInto(src, rect.Width, rect.Height)
	if rect.Opacity != nil && *rect.Opacity < 1 {
		fitted = fade(fitted, *rect.Opacity)
	}

	dc.Push()
	if rect.Rotation != 0 {
		cx := float64(rect.X) + float64(rect.Width)/2
		cy := float64(rect.Y) + float64(rect.Height)/2
		dc.RotateAbout(gg.Radians(rect.Rotation), cx, cy)
	}
	dc.DrawImage(fitted, rect.X, rect.Y)
	dc.Pop()
}

// fitInto resamples src to fit inside w by h, centered, padding the remainder
// with transparency.
func fitInto(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw <= 0 || sh <= 0 {
		return dst
	}
	scale := math.Min(float64(w)/float64(sw), float64(h)/float64(sh))
	dw := int(math.Round(float64(sw) * scale))
	dh := int(math.Round(float64(sh) * scale))
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	ox := (w - dw) / 2
	oy := (h - dh) / 2
	xdraw.CatmullRom.Scale(dst, image.Rect(ox, oy, ox+dw, oy+dh), src, sb, xdraw.Over, nil)
	return dst
}

// fade multiplies the image's alpha by the given opacity.
func fade(src *image.RGBA, opacity float64) *image.RGBA {
	if opacity < 0 {
		opacity = 0
	}
	out := image.NewRGBA(src.Bounds())
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(opacity * 255))})
	stddraw.DrawMask(out, src.Bounds(), src, image.Point{}, mask, image.Point{}, stddraw.Over)
	return out
}
