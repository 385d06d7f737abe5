// Package thumbnail holds the layout, validation, and format primitives for
// role-based thumbnail composition. Everything operates on plain structs so
// callers never depend on a live database object graph.
package thumbnail

import "github.com/google/uuid"

// LayerRect places one role's layer on the base canvas.
type LayerRect struct {
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	ZIndex   int      `json:"zIndex"`
	Rotation float64  `json:"rotation,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`
}

// LayoutConfig is a template's base layout: canvas dimensions plus one
// rectangle per role.
type LayoutConfig struct {
	BaseWidth  int                  `json:"baseWidth"`
	BaseHeight int                  `json:"baseHeight"`
	Layers     map[string]LayerRect `json:"layers"`
}

// FormatOverride redefines the base dimensions for one output format and may
// replace individual role layers before rescaling.
type FormatOverride struct {
	Width  int                  `json:"width"`
	Height int                  `json:"height"`
	Layers map[string]LayerRect `json:"layers,omitempty"`
}

// CustomConfig is a per-binding positioning override. Only fields that are
// set replace the corresponding resolved-layout fields.
type CustomConfig struct {
	X        *int     `json:"x,omitempty"`
	Y        *int     `json:"y,omitempty"`
	Width    *int     `json:"width,omitempty"`
	Height   *int     `json:"height,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`
}

// ConditionalRole marks a role as required only when one of the trigger roles
// is bound.
type ConditionalRole struct {
	RequiredIf []string `json:"required_if"`
}

// TemplateSpec is the validation-relevant slice of a template.
type TemplateSpec struct {
	RequiredRoles    []string
	OptionalRoles    []string
	ConditionalRoles map[string]ConditionalRole
	PairedRoles      map[string]string
}

// Binding pairs a role slot with the asset chosen to fill it.
type Binding struct {
	AssetRole string
	AssetID   uuid.UUID
}

// ValidationResult reports whether a bound set satisfies a template.
// Errors block generation; warnings never do.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}
