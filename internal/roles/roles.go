// Package roles implements the CATEGORY.ROLE.VARIANT naming grammar used to
// tag assets and template slots.
package roles

import "strings"

// Category is the closed set of asset categories.
type Category string

const (
	CategoryText     Category = "TEXT"
	CategoryBG       Category = "BG"
	CategoryChar     Category = "CHAR"
	CategoryGuest    Category = "GUEST"
	CategoryWardrobe Category = "WARDROBE"
	CategoryUI       Category = "UI"
	CategoryIcon     Category = "ICON"
	CategoryBrand    Category = "BRAND"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryText, CategoryBG, CategoryChar, CategoryGuest,
		CategoryWardrobe, CategoryUI, CategoryIcon, CategoryBrand:
		return true
	}
	return false
}

// Scope is the availability tier of an asset.
type Scope string

const (
	ScopeGlobal  Scope = "GLOBAL"
	ScopeShow    Scope = "SHOW"
	ScopeEpisode Scope = "EPISODE"
)

func (s Scope) Valid() bool {
	switch s {
	case ScopeGlobal, ScopeShow, ScopeEpisode:
		return true
	}
	return false
}

// Parsed is a decomposed role string. Variant is empty when the role has only
// two segments.
type Parsed struct {
	Category string
	Role     string
	Variant  string
	Full     string
}

// Parse splits a role into its segments. It returns nil unless the string has
// exactly two or three dot-separated segments with the first two non-empty.
func Parse(role string) *Parsed {
	if role == "" {
		return nil
	}
	parts := strings.Split(role, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return nil
	}
	if parts[0] == "" || parts[1] == "" {
		return nil
	}
	p := &Parsed{
		Category: parts[0],
		Role:     parts[1],
		Full:     role,
	}
	if len(parts) == 3 {
		p.Variant = parts[2]
	}
	return p
}

func IsValid(role string) bool {
	return Parse(role) != nil
}

// Key returns the variant-agnostic "CATEGORY.ROLE" prefix used for
// eligibility matching.
func (p *Parsed) Key() string {
	if p == nil {
		return ""
	}
	return p.Category + "." + p.Role
}

// MatchesForEligibility reports whether two roles share category and role
// segments. Variants are intentionally ignored: an asset tagged
// CHAR.HOST.SECONDARY may fill a CHAR.HOST.PRIMARY slot; slot-exact variant
// semantics are the binder's concern.
func MatchesForEligibility(a, b string) bool {
	pa := Parse(a)
	pb := Parse(b)
	if pa == nil || pb == nil {
		return false
	}
	return pa.Category == pb.Category && pa.Role == pb.Role
}
