package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/stagelight/showreel-backend/internal/domain/catalog"
	"github.com/stagelight/showreel-backend/internal/pkg/dbctx"
	"github.com/stagelight/showreel-backend/internal/platform/apierr"
	"github.com/stagelight/showreel-backend/internal/platform/logger"
	"github.com/stagelight/showreel-backend/internal/thumbnail"
)

type fakeCompositionRepo struct {
	mu   sync.Mutex
	comp *types.ThumbnailComposition
	// Number of UpdateFields calls to reject before succeeding again.
	failUpdates int
}

func (f *fakeCompositionRepo) Create(dbc dbctx.Context, row *types.ThumbnailComposition) (*types.ThumbnailComposition, error) {
	f.comp = row
	return row, nil
}

func (f *fakeCompositionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ThumbnailComposition, error) {
	if f.comp == nil || f.comp.ID != id {
		return nil, nil
	}
	return f.comp, nil
}

func (f *fakeCompositionRepo) GetWithAssets(dbc dbctx.Context, id uuid.UUID) (*types.ThumbnailComposition, error) {
	return f.GetByID(dbc, id)
}

func (f *fakeCompositionRepo) TransitionToGenerating(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.comp == nil || f.comp.ID != id {
		return false, nil
	}
	if f.comp.GenerationStatus != types.GenerationStatusDraft && f.comp.GenerationStatus != types.GenerationStatusFailed {
		return false, nil
	}
	f.comp.GenerationStatus = types.GenerationStatusGenerating
	return true, nil
}

func (f *fakeCompositionRepo) ResetToDraft(dbc dbctx.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comp.GenerationStatus = types.GenerationStatusDraft
	f.comp.ValidationErrors = nil
	f.comp.ValidationWarnings = nil
	f.comp.GenerationErrors = nil
	return nil
}

func (f *fakeCompositionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdates > 0 {
		f.failUpdates--
		return errors.New("db write refused")
	}
	if v, ok := updates["generation_status"].(string); ok {
		f.comp.GenerationStatus = v
	}
	if v, ok := updates["generated_formats"].(datatypes.JSON); ok {
		_ = json.Unmarshal(v, &f.comp.GeneratedFormats)
	}
	if v, ok := updates["validation_errors"].(datatypes.JSON); ok {
		_ = json.Unmarshal(v, &f.comp.ValidationErrors)
	}
	if v, ok := updates["generation_errors"].(datatypes.JSON); ok {
		_ = json.Unmarshal(v, &f.comp.GenerationErrors)
	}
	if v, ok := updates["validation_warnings"].(datatypes.JSON); ok {
		_ = json.Unmarshal(v, &f.comp.ValidationWarnings)
	}
	if v, ok := updates["selected_formats"].(datatypes.JSON); ok {
		_ = json.Unmarshal(v, &f.comp.SelectedFormats)
	}
	return nil
}

type fakeFetcher struct {
	payload []byte
	err     error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

type fakeStore struct {
	mu      sync.Mutex
	uploads map[string][]byte
	failFor string
}

func (f *fakeStore) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if f.failFor != "" && strings.Contains(key, f.failFor) {
		return "", errors.New("bucket unavailable")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[key] = body
	return "https://cdn.test/" + key, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func testComposition() *types.ThumbnailComposition {
	hostRole := "CHAR.HOST.PRIMARY"
	asset := &types.Asset{
		ID:           uuid.New(),
		Name:         "lala-wave",
		AssetRole:    &hostRole,
		RoleCategory: "CHAR",
		RoleName:     "HOST",
		RawURL:       "https://assets.test/lala.png",
	}
	tpl := &types.ThumbnailTemplate{
		ID:              uuid.New(),
		TemplateName:    "standard",
		TemplateVersion: "v1",
		RequiredRoles:   []string{"CHAR.HOST.PRIMARY"},
		OptionalRoles:   []string{"BG.MAIN"},
		LayoutConfig: thumbnail.LayoutConfig{
			BaseWidth:  1920,
			BaseHeight: 1080,
			Layers: map[string]thumbnail.LayerRect{
				"CHAR.HOST.PRIMARY": {X: 100, Y: 100, Width: 600, Height: 800, ZIndex: 2},
				"BG.MAIN":           {X: 0, Y: 0, Width: 1920, Height: 1080, ZIndex: 0},
			},
		},
	}
	return &types.ThumbnailComposition{
		ID:               uuid.New(),
		EpisodeID:        uuid.New(),
		TemplateID:       tpl.ID,
		Template:         tpl,
		TemplateVersion:  tpl.TemplateVersion,
		GenerationStatus: types.GenerationStatusDraft,
		SelectedFormats:  []string{"YOUTUBE", "INSTAGRAM_FEED"},
		CompositionAssets: []types.CompositionAsset{
			{AssetRole: hostRole, AssetID: asset.ID, Asset: asset},
		},
	}
}

func newTestGenerator(t *testing.T, repo *fakeCompositionRepo, fetcher *fakeFetcher, store *fakeStore) GeneratorService {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewGeneratorService(nil, log, repo, fetcher, store)
}

func TestGenerateRendersAllFormats(t *testing.T) {
	repo := &fakeCompositionRepo{comp: testComposition()}
	store := &fakeStore{}
	svc := newTestGenerator(t, repo, &fakeFetcher{payload: pngBytes(t, 10, 10)}, store)

	result, err := svc.Generate(context.Background(), repo.comp.ID, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got errors %v", result.Errors)
	}
	if result.Status != types.GenerationStatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", result.Status)
	}
	for _, format := range []string{"YOUTUBE", "INSTAGRAM_FEED"} {
		url, ok := result.GeneratedFormats[format]
		if !ok || url == "" {
			t.Fatalf("missing generated URL for %s", format)
		}
	}
	if len(store.uploads) != 2 {
		t.Fatalf("uploads = %d, want 2", len(store.uploads))
	}
	for key, body := range store.uploads {
		cfg, err := png.DecodeConfig(bytes.NewReader(body))
		if err != nil {
			t.Fatalf("uploaded %s is not a png: %v", key, err)
		}
		f := thumbnail.Formats["YOUTUBE"]
		if strings.Contains(key, "instagram_feed") {
			f = thumbnail.Formats["INSTAGRAM_FEED"]
		}
		if cfg.Width != f.Width || cfg.Height != f.Height {
			t.Fatalf("uploaded %s is %dx%d, want %dx%d", key, cfg.Width, cfg.Height, f.Width, f.Height)
		}
	}
}

func TestGenerateFailsValidationBeforeRendering(t *testing.T) {
	comp := testComposition()
	comp.CompositionAssets = nil
	repo := &fakeCompositionRepo{comp: comp}
	store := &fakeStore{}
	svc := newTestGenerator(t, repo, &fakeFetcher{payload: pngBytes(t, 10, 10)}, store)

	result, err := svc.Generate(context.Background(), comp.ID, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Success {
		t.Fatal("expected validation failure")
	}
	if result.Status != types.GenerationStatusFailed {
		t.Fatalf("status = %s, want FAILED", result.Status)
	}
	want := "Missing required asset for role: CHAR.HOST.PRIMARY"
	found := false
	for _, e := range result.Errors {
		if e == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("errors = %v, want %q", result.Errors, want)
	}
	if len(store.uploads) != 0 {
		t.Fatalf("uploaded %d artifacts despite failed validation", len(store.uploads))
	}
}

func TestGenerateSkipsUnfetchableLayer(t *testing.T) {
	repo := &fakeCompositionRepo{comp: testComposition()}
	store := &fakeStore{}
	svc := newTestGenerator(t, repo, &fakeFetcher{err: errors.New("connection refused")}, store)

	result, err := svc.Generate(context.Background(), repo.comp.ID, []string{"YOUTUBE"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success with skipped layer, got errors %v", result.Errors)
	}
	skipped := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "Skipping layer CHAR.HOST.PRIMARY") {
			skipped = true
		}
	}
	if !skipped {
		t.Fatalf("warnings = %v, want a skipped-layer warning", result.Warnings)
	}
	if len(store.uploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(store.uploads))
	}
}

func TestGenerateIsolatesFormatFailures(t *testing.T) {
	repo := &fakeCompositionRepo{comp: testComposition()}
	store := &fakeStore{failFor: "instagram_feed"}
	svc := newTestGenerator(t, repo, &fakeFetcher{payload: pngBytes(t, 10, 10)}, store)

	result, err := svc.Generate(context.Background(), repo.comp.ID, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success with one failed format, got errors %v", result.Errors)
	}
	if _, ok := result.GeneratedFormats["YOUTUBE"]; !ok {
		t.Fatal("YOUTUBE should have rendered")
	}
	if _, ok := result.GeneratedFormats["INSTAGRAM_FEED"]; ok {
		t.Fatal("INSTAGRAM_FEED should have failed")
	}
	failed := false
	for _, e := range result.Errors {
		if strings.HasPrefix(e, "INSTAGRAM_FEED:") {
			failed = true
		}
	}
	if !failed {
		t.Fatalf("errors = %v, want an INSTAGRAM_FEED entry", result.Errors)
	}
}

func TestGenerateFailsWhenNothingRenders(t *testing.T) {
	repo := &fakeCompositionRepo{comp: testComposition()}
	store := &fakeStore{failFor: "thumbnails/"}
	svc := newTestGenerator(t, repo, &fakeFetcher{payload: pngBytes(t, 10, 10)}, store)

	result, err := svc.Generate(context.Background(), repo.comp.ID, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Success {
		t.Fatal("expected failure when every upload fails")
	}
	if result.Status != types.GenerationStatusFailed {
		t.Fatalf("status = %s, want FAILED", result.Status)
	}
}

func TestGenerateRejectsConcurrentRun(t *testing.T) {
	comp := testComposition()
	comp.GenerationStatus = types.GenerationStatusGenerating
	repo := &fakeCompositionRepo{comp: comp}
	svc := newTestGenerator(t, repo, &fakeFetcher{payload: pngBytes(t, 10, 10)}, &fakeStore{})

	_, err := svc.Generate(context.Background(), comp.ID, nil)
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *apierr.Error", err)
	}
	if apiErr.Code != apierr.CodeGenerationInFlight {
		t.Fatalf("code = %s, want %s", apiErr.Code, apierr.CodeGenerationInFlight)
	}
}

func TestGenerateRejectsUnknownFormat(t *testing.T) {
	repo := &fakeCompositionRepo{comp: testComposition()}
	svc := newTestGenerator(t, repo, &fakeFetcher{payload: pngBytes(t, 10, 10)}, &fakeStore{})

	_, err := svc.Generate(context.Background(), repo.comp.ID, []string{"TIKTOK"})
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *apierr.Error", err)
	}
	if apiErr.Code != apierr.CodeInvalidFormat {
		t.Fatalf("code = %s, want %s", apiErr.Code, apierr.CodeInvalidFormat)
	}
}

func TestRegenerateReRunsCompletedComposition(t *testing.T) {
	comp := testComposition()
	comp.GenerationStatus = types.GenerationStatusCompleted
	repo := &fakeCompositionRepo{comp: comp}
	store := &fakeStore{}
	svc := newTestGenerator(t, repo, &fakeFetcher{payload: pngBytes(t, 10, 10)}, store)

	result, err := svc.Regenerate(context.Background(), comp.ID)
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got errors %v", result.Errors)
	}
	if len(result.GeneratedFormats) != 2 {
		t.Fatalf("generated %d formats, want the 2 previously selected", len(result.GeneratedFormats))
	}
}

func TestStatusReportsPersistedState(t *testing.T) {
	comp := testComposition()
	comp.GenerationStatus = types.GenerationStatusCompleted
	comp.GeneratedFormats = map[string]string{"YOUTUBE": "https://cdn.test/x.png"}
	repo := &fakeCompositionRepo{comp: comp}
	svc := newTestGenerator(t, repo, &fakeFetcher{}, &fakeStore{})

	state, err := svc.Status(context.Background(), comp.ID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if state.Status != types.GenerationStatusCompleted {
		t.Fatalf("status = %s", state.Status)
	}
	if state.GeneratedFormats["YOUTUBE"] == "" {
		t.Fatal("missing generated format URL")
	}
}

func TestGenerateReleasesGateWhenPersistFails(t *testing.T) {
	repo := &fakeCompositionRepo{comp: testComposition(), failUpdates: 1}
	store := &fakeStore{}
	svc := newTestGenerator(t, repo, &fakeFetcher{payload: pngBytes(t, 10, 10)}, store)

	if _, err := svc.Generate(context.Background(), repo.comp.ID, nil); err == nil {
		t.Fatal("expected error when the format persist is refused")
	}
	if repo.comp.GenerationStatus != types.GenerationStatusFailed {
		t.Fatalf("status = %s, want FAILED so a retry can win the gate", repo.comp.GenerationStatus)
	}

	result, err := svc.Generate(context.Background(), repo.comp.ID, nil)
	if err != nil {
		t.Fatalf("retry after failed persist: %v", err)
	}
	if !result.Success {
		t.Fatalf("retry should succeed, got errors %v", result.Errors)
	}
}

func TestGeneratePersistsRenderErrorsSeparately(t *testing.T) {
	repo := &fakeCompositionRepo{comp: testComposition()}
	store := &fakeStore{failFor: "instagram_feed"}
	svc := newTestGenerator(t, repo, &fakeFetcher{payload: pngBytes(t, 10, 10)}, store)

	if _, err := svc.Generate(context.Background(), repo.comp.ID, nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(repo.comp.ValidationErrors) != 0 {
		t.Fatalf("validation_errors = %v, render failures do not belong there", repo.comp.ValidationErrors)
	}
	found := false
	for _, e := range repo.comp.GenerationErrors {
		if strings.HasPrefix(e, "INSTAGRAM_FEED:") {
			found = true
		}
	}
	if !found {
		t.Fatalf("generation_errors = %v, want an INSTAGRAM_FEED entry", repo.comp.GenerationErrors)
	}

	state, err := svc.Status(context.Background(), repo.comp.ID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(state.GenerationErrors) == 0 {
		t.Fatal("status should surface generation errors")
	}
	if len(state.ValidationErrors) != 0 {
		t.Fatalf("status validation_errors = %v", state.ValidationErrors)
	}
}

func TestResolveLayersOrdersByZIndex(t *testing.T) {
	comp := testComposition()
	bgRole := "BG.MAIN"
	bgAsset := &types.Asset{ID: uuid.New(), AssetRole: &bgRole, RawURL: "https://assets.test/bg.png"}
	comp.CompositionAssets = append(comp.CompositionAssets, types.CompositionAsset{
		AssetRole: bgRole, AssetID: bgAsset.ID, Asset: bgAsset,
	})

	layers, warnings := resolveLayers(comp, comp.Template, "YOUTUBE")
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	if len(layers) != 2 {
		t.Fatalf("layers = %d, want 2", len(layers))
	}
	if layers[0].role != "BG.MAIN" || layers[1].role != "CHAR.HOST.PRIMARY" {
		t.Fatalf("unexpected z-order: %s then %s", layers[0].role, layers[1].role)
	}
}

func TestResolveLayersVariantFallback(t *testing.T) {
	comp := testComposition()
	altRole := "CHAR.HOST.SECONDARY"
	comp.CompositionAssets[0].AssetRole = altRole
	comp.CompositionAssets[0].Asset.AssetRole = &altRole

	layers, warnings := resolveLayers(comp, comp.Template, "YOUTUBE")
	if len(layers) != 1 {
		t.Fatalf("layers = %d, warnings = %v", len(layers), warnings)
	}
	if layers[0].role != altRole {
		t.Fatalf("role = %s", layers[0].role)
	}
}

func TestResolveLayersFallbackIsDeterministic(t *testing.T) {
	comp := testComposition()
	boundRole := "CHAR.HOST.SECONDARY"
	comp.CompositionAssets[0].AssetRole = boundRole
	comp.CompositionAssets[0].Asset.AssetRole = &boundRole
	comp.Template.LayoutConfig.Layers = map[string]thumbnail.LayerRect{
		"CHAR.HOST.ALT":     {X: 50, Y: 50, Width: 400, Height: 600, ZIndex: 1},
		"CHAR.HOST.PRIMARY": {X: 900, Y: 100, Width: 600, Height: 800, ZIndex: 2},
	}

	for i := 0; i < 20; i++ {
		layers, _ := resolveLayers(comp, comp.Template, "YOUTUBE")
		if len(layers) != 1 {
			t.Fatalf("layers = %d, want 1", len(layers))
		}
		if layers[0].rect.X != 50 {
			t.Fatalf("run %d picked rect at x=%d, want the CHAR.HOST.ALT layer at x=50", i, layers[0].rect.X)
		}
	}
}

func TestResolveLayersWarnsOnMissingLayer(t *testing.T) {
	comp := testComposition()
	orphan := "UI.FRAME.GOLD"
	comp.CompositionAssets = append(comp.CompositionAssets, types.CompositionAsset{
		AssetRole: orphan,
		AssetID:   uuid.New(),
		Asset:     &types.Asset{ID: uuid.New(), RawURL: "https://assets.test/frame.png"},
	})

	layers, warnings := resolveLayers(comp, comp.Template, "YOUTUBE")
	if len(layers) != 1 {
		t.Fatalf("layers = %d, want 1", len(layers))
	}
	want := fmt.Sprintf("No layout layer for role: %s", orphan)
	found := false
	for _, w := range warnings {
		if w == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("warnings = %v, want %q", warnings, want)
	}
}
