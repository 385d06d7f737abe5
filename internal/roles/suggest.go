package roles

import "strings"

// SuggestRole proposes a role for an asset based on its legacy grouping and
// name. Returns "" when nothing fits.
func SuggestRole(assetType, assetGroup, purpose, name string) string {
	switch {
	case assetGroup == "LALA":
		return "CHAR.HOST.PRIMARY"
	case assetGroup == "GUEST":
		return "GUEST.REACTION.1"
	case assetGroup == "SHOW" && purpose == "ICON":
		return "BRAND.LOGO.PRIMARY"
	case assetGroup == "WARDROBE":
		return "WARDROBE.ITEM.1"
	case assetType == "background" || purpose == "BACKGROUND":
		return "BG.MAIN"
	}

	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "background"), strings.Contains(lower, "bg"):
		return "BG.MAIN"
	case strings.Contains(lower, "logo"), strings.Contains(lower, "brand"):
		return "BRAND.LOGO.PRIMARY"
	case strings.Contains(lower, "title"):
		return "TEXT.TITLE.PRIMARY"
	case strings.Contains(lower, "icon"):
		return "UI.ICON.PRIMARY"
	}
	return ""
}
