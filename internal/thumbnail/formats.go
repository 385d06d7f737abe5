package thumbnail

// FormatSpec is one named output pixel-dimension target.
type FormatSpec struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Name   string `json:"name"`
}

// Formats is the known output format catalog.
var Formats = map[string]FormatSpec{
	"YOUTUBE":         {Width: 1920, Height: 1080, Name: "YouTube"},
	"INSTAGRAM_FEED":  {Width: 1080, Height: 1080, Name: "Instagram Feed"},
	"INSTAGRAM_STORY": {Width: 1080, Height: 1920, Name: "Instagram Story"},
	"FACEBOOK":        {Width: 1200, Height: 630, Name: "Facebook"},
	"TWITTER":         {Width: 1200, Height: 675, Name: "Twitter"},
}

// FormatNames returns the catalog keys in a stable order.
func FormatNames() []string {
	return []string{"YOUTUBE", "INSTAGRAM_FEED", "INSTAGRAM_STORY", "FACEBOOK", "TWITTER"}
}
