package thumbnail

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestValidateCompositionMissingRequired(t *testing.T) {
	spec := TemplateSpec{
		RequiredRoles: []string{"BG.MAIN", "CHAR.HOST.PRIMARY"},
	}
	bindings := []Binding{{AssetRole: "BG.MAIN", AssetID: uuid.New()}}

	result := ValidateComposition(spec, bindings)
	if result.Valid {
		t.Fatal("missing required role should invalidate")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "CHAR.HOST.PRIMARY") {
		t.Fatalf("errors = %v", result.Errors)
	}
}

func TestValidateCompositionUnknownRoleWarns(t *testing.T) {
	spec := TemplateSpec{
		RequiredRoles: []string{"BG.MAIN", "CHAR.HOST.PRIMARY"},
	}
	bindings := []Binding{
		{AssetRole: "BG.MAIN", AssetID: uuid.New()},
		{AssetRole: "CHAR.HOST.PRIMARY", AssetID: uuid.New()},
		{AssetRole: "FOO.BAR", AssetID: uuid.New()},
	}

	result := ValidateComposition(spec, bindings)
	if !result.Valid {
		t.Fatalf("unknown role must not block: %v", result.Errors)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "FOO.BAR") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
}

func TestValidateCompositionVariantAgnostic(t *testing.T) {
	spec := TemplateSpec{RequiredRoles: []string{"GUEST.REACTION.1"}}
	bindings := []Binding{{AssetRole: "GUEST.REACTION.2", AssetID: uuid.New()}}

	result := ValidateComposition(spec, bindings)
	if !result.Valid {
		t.Fatalf("variant mismatch should still satisfy required role: %v", result.Errors)
	}
}

func TestValidateCompositionOptionalWarns(t *testing.T) {
	spec := TemplateSpec{
		RequiredRoles: []string{"BG.MAIN"},
		OptionalRoles: []string{"BRAND.LOGO.PRIMARY"},
	}
	bindings := []Binding{{AssetRole: "BG.MAIN", AssetID: uuid.New()}}

	result := ValidateComposition(spec, bindings)
	if !result.Valid {
		t.Fatalf("optional absence must not block: %v", result.Errors)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "BRAND.LOGO.PRIMARY") {
		t.Fatalf("warnings = %v", result.Warnings)
	}
}

func TestValidateCompositionConditionalRoles(t *testing.T) {
	spec := TemplateSpec{
		RequiredRoles: []string{"BG.MAIN"},
		OptionalRoles: []string{"WARDROBE.ITEM.1", "UI.PANEL.MAIN"},
		ConditionalRoles: map[string]ConditionalRole{
			"UI.PANEL.MAIN": {RequiredIf: []string{"WARDROBE.ITEM.1"}},
		},
	}

	// Trigger absent: conditional role not required.
	ok := ValidateComposition(spec, []Binding{{AssetRole: "BG.MAIN"}})
	if !ok.Valid {
		t.Fatalf("conditional role should not fire without trigger: %v", ok.Errors)
	}

	// Trigger present, conditional role missing: error.
	bad := ValidateComposition(spec, []Binding{
		{AssetRole: "BG.MAIN"},
		{AssetRole: "WARDROBE.ITEM.1"},
	})
	if bad.Valid {
		t.Fatal("triggered conditional role should be required")
	}
	if len(bad.Errors) != 1 || !strings.Contains(bad.Errors[0], "UI.PANEL.MAIN") {
		t.Fatalf("errors = %v", bad.Errors)
	}
}

func TestValidateCompositionPairedRoles(t *testing.T) {
	spec := TemplateSpec{
		RequiredRoles: []string{"BG.MAIN"},
		OptionalRoles: []string{"WARDROBE.ITEM.1", "ICON.WARDROBE.1"},
		PairedRoles: map[string]string{
			"WARDROBE.ITEM.1": "ICON.WARDROBE.1",
		},
	}
	result := ValidateComposition(spec, []Binding{
		{AssetRole: "BG.MAIN"},
		{AssetRole: "WARDROBE.ITEM.1"},
	})
	if !result.Valid {
		t.Fatalf("unpaired role must not block: %v", result.Errors)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "ICON.WARDROBE.1") && strings.Contains(w, "paired") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected paired-role warning, got %v", result.Warnings)
	}
}

func TestValidateTemplateConfig(t *testing.T) {
	good := ValidateTemplateConfig(
		TemplateSpec{RequiredRoles: []string{"BG.MAIN"}, OptionalRoles: []string{"BRAND.LOGO.PRIMARY"}},
		LayoutConfig{BaseWidth: 1920, BaseHeight: 1080, Layers: map[string]LayerRect{"BG.MAIN": {Width: 1920, Height: 1080}}},
		map[string]FormatOverride{"INSTAGRAM_FEED": {Width: 1080, Height: 1080}},
	)
	if len(good) != 0 {
		t.Fatalf("valid template flagged: %v", good)
	}

	// A declared role without a layout entry is allowed at save time.
	uncovered := ValidateTemplateConfig(
		TemplateSpec{RequiredRoles: []string{"BG.MAIN", "TEXT.TITLE.PRIMARY"}},
		LayoutConfig{BaseWidth: 1920, BaseHeight: 1080, Layers: map[string]LayerRect{"BG.MAIN": {Width: 10, Height: 10}}},
		nil,
	)
	if len(uncovered) != 0 {
		t.Fatalf("layout coverage should not be enforced at save: %v", uncovered)
	}

	bad := ValidateTemplateConfig(
		TemplateSpec{RequiredRoles: []string{"notarole"}},
		LayoutConfig{BaseWidth: 0, BaseHeight: 1080, Layers: map[string]LayerRect{"also_bad": {}}},
		map[string]FormatOverride{"MYSPACE": {Width: 0, Height: 10}},
	)
	// invalid role, zero base width, bad layer key, unknown format, zero override width
	if len(bad) != 5 {
		t.Fatalf("expected 5 problems, got %v", bad)
	}
}
