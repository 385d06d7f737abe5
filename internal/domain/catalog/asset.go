package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Asset is an uploaded image or video still usable as a thumbnail layer.
// RoleCategory/RoleName are derived from AssetRole when the role is assigned
// so eligibility queries compare parsed segments instead of string prefixes.
type Asset struct {
	ID   uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name string    `gorm:"type:text;not null;default:''" json:"name"`

	AssetType string `gorm:"type:text;not null;default:'image';index" json:"asset_type"`

	RawURL       string `gorm:"type:text;not null;default:''" json:"raw_url"`
	ProcessedURL string `gorm:"type:text;not null;default:''" json:"processed_url"`
	StorageKey   string `gorm:"type:text;not null;default:'';index" json:"storage_key"`

	AssetRole    *string `gorm:"type:text;index" json:"asset_role,omitempty"`
	RoleCategory string  `gorm:"type:text;not null;default:'';index:idx_asset_role_key,priority:1" json:"role_category"`
	RoleName     string  `gorm:"type:text;not null;default:'';index:idx_asset_role_key,priority:2" json:"role_name"`

	AssetScope string     `gorm:"type:text;not null;default:'GLOBAL';index" json:"asset_scope"`
	ShowID     *uuid.UUID `gorm:"type:uuid;index" json:"show_id,omitempty"`
	Show       *Show      `gorm:"foreignKey:ShowID;references:ID" json:"show,omitempty"`

	Episodes []Episode `gorm:"many2many:episode_asset" json:"episodes,omitempty"`

	Metadata datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Asset) TableName() string { return "asset" }

// BestURL returns the processed (background-removed) URL when present, else
// the raw upload URL.
func (a *Asset) BestURL() string {
	if a == nil {
		return ""
	}
	if a.ProcessedURL != "" {
		return a.ProcessedURL
	}
	return a.RawURL
}
