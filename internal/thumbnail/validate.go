package thumbnail

import (
	"fmt"

	"github.com/stagelight/showreel-backend/internal/roles"
)

func bindingsContain(bindings []Binding, role string) bool {
	for _, b := range bindings {
		if roles.MatchesForEligibility(b.AssetRole, role) {
			return true
		}
	}
	return false
}

// ValidateComposition checks a proposed set of role bindings against a
// template. Missing required roles (including triggered conditional roles)
// are errors; missing optional roles, unpaired roles, and roles the template
// does not declare are warnings. Role comparison is variant-agnostic.
func ValidateComposition(spec TemplateSpec, bindings []Binding) ValidationResult {
	result := ValidationResult{
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}

	for _, required := range spec.RequiredRoles {
		if !bindingsContain(bindings, required) {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Missing required asset for role: %s", required))
		}
	}

	for role, cond := range spec.ConditionalRoles {
		triggered := false
		for _, trigger := range cond.RequiredIf {
			if bindingsContain(bindings, trigger) {
				triggered = true
				break
			}
		}
		if triggered && !bindingsContain(bindings, role) {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Role %s is required when a trigger role is present", role))
		}
	}

	for role1, role2 := range spec.PairedRoles {
		has1 := bindingsContain(bindings, role1)
		has2 := bindingsContain(bindings, role2)
		if has1 && !has2 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s is present but paired role %s is missing", role1, role2))
		} else if has2 && !has1 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s is present but paired role %s is missing", role2, role1))
		}
	}

	for _, optional := range spec.OptionalRoles {
		if !bindingsContain(bindings, optional) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Optional asset not provided: %s", optional))
		}
	}

	for _, b := range bindings {
		known := false
		for _, r := range spec.RequiredRoles {
			if roles.MatchesForEligibility(b.AssetRole, r) {
				known = true
				break
			}
		}
		if !known {
			for _, r := range spec.OptionalRoles {
				if roles.MatchesForEligibility(b.AssetRole, r) {
					known = true
					break
				}
			}
		}
		if !known {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Unknown role provided: %s", b.AssetRole))
		}
	}

	return result
}

// ValidateTemplateConfig checks a template's structure at save time: every
// declared role must parse, the base canvas must have positive dimensions,
// and every layout layer key must parse. Layout coverage of declared roles is
// deliberately not required; a role without a layer is skipped with a warning
// at generation time instead.
func ValidateTemplateConfig(spec TemplateSpec, layout LayoutConfig, overrides map[string]FormatOverride) []string {
	var problems []string

	for _, role := range spec.RequiredRoles {
		if !roles.IsValid(role) {
			problems = append(problems, fmt.Sprintf("invalid required role: %s", role))
		}
	}
	for _, role := range spec.OptionalRoles {
		if !roles.IsValid(role) {
			problems = append(problems, fmt.Sprintf("invalid optional role: %s", role))
		}
	}
	if layout.BaseWidth <= 0 || layout.BaseHeight <= 0 {
		problems = append(problems, "layout must include positive baseWidth and baseHeight")
	}
	for role := range layout.Layers {
		if !roles.IsValid(role) {
			problems = append(problems, fmt.Sprintf("invalid layout layer key: %s", role))
		}
	}
	for name, ov := range overrides {
		if _, ok := Formats[name]; !ok {
			problems = append(problems, fmt.Sprintf("unknown format override: %s", name))
		}
		if ov.Width <= 0 || ov.Height <= 0 {
			problems = append(problems, fmt.Sprintf("format override %s must include positive dimensions", name))
		}
		for role := range ov.Layers {
			if !roles.IsValid(role) {
				problems = append(problems, fmt.Sprintf("invalid layer key in format override %s: %s", name, role))
			}
		}
	}
	return problems
}
