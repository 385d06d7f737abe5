package thumbnail

import "math"

// LayoutForFormat merges a template's base layout with the override for one
// format, if any. The override's dimensions replace the base dimensions and
// any layer it redefines replaces the base entry. The result is NOT rescaled;
// rescaling happens at compositing time against the target pixel format.
func LayoutForFormat(base LayoutConfig, overrides map[string]FormatOverride, format string) LayoutConfig {
	merged := LayoutConfig{
		BaseWidth:  base.BaseWidth,
		BaseHeight: base.BaseHeight,
		Layers:     make(map[string]LayerRect, len(base.Layers)),
	}
	for role, rect := range base.Layers {
		merged.Layers[role] = rect
	}
	ov, ok := overrides[format]
	if !ok {
		return merged
	}
	if ov.Width > 0 {
		merged.BaseWidth = ov.Width
	}
	if ov.Height > 0 {
		merged.BaseHeight = ov.Height
	}
	for role, rect := range ov.Layers {
		merged.Layers[role] = rect
	}
	return merged
}

// ScaleRect maps a rectangle from the base canvas onto a target canvas.
// Axes scale independently so aspect-ratio-changing formats still fill the
// canvas without letterboxing.
func ScaleRect(r LayerRect, baseWidth, baseHeight, targetWidth, targetHeight int) LayerRect {
	if baseWidth <= 0 || baseHeight <= 0 {
		return r
	}
	scaleX := float64(targetWidth) / float64(baseWidth)
	scaleY := float64(targetHeight) / float64(baseHeight)
	out := r
	out.X = int(math.Round(float64(r.X) * scaleX))
	out.Y = int(math.Round(float64(r.Y) * scaleY))
	out.Width = int(math.Round(float64(r.Width) * scaleX))
	out.Height = int(math.Round(float64(r.Height) * scaleY))
	return out
}

// EffectiveLayer applies a binding's custom config on top of a resolved
// rectangle, field by field. Nil config returns the rectangle unchanged.
func EffectiveLayer(r LayerRect, cc *CustomConfig) LayerRect {
	if cc == nil {
		return r
	}
	out := r
	if cc.X != nil {
		out.X = *cc.X
	}
	if cc.Y != nil {
		out.Y = *cc.Y
	}
	if cc.Width != nil {
		out.Width = *cc.Width
	}
	if cc.Height != nil {
		out.Height = *cc.Height
	}
	if cc.Rotation != nil {
		out.Rotation = *cc.Rotation
	}
	if cc.Opacity != nil {
		out.Opacity = cc.Opacity
	}
	return out
}

// EffectiveZIndex picks the stacking order for a binding: an explicit layer
// order wins over the layout's zIndex. Lower values render first (bottom).
func EffectiveZIndex(layerOrder *int, rect LayerRect) int {
	if layerOrder != nil {
		return *layerOrder
	}
	return rect.ZIndex
}
