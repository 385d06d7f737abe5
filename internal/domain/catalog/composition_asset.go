package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/stagelight/showreel-backend/internal/thumbnail"
)

// CompositionAsset fills one role slot of a composition with one asset. A
// composition can bind each role slot at most once.
type CompositionAsset struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	CompositionID uuid.UUID             `gorm:"type:uuid;not null;index;index:idx_composition_role,unique,priority:1" json:"composition_id"`
	Composition   *ThumbnailComposition `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompositionID;references:ID" json:"composition,omitempty"`

	AssetRole string `gorm:"type:text;not null;index:idx_composition_role,unique,priority:2" json:"asset_role"`

	AssetID uuid.UUID `gorm:"type:uuid;not null;index" json:"asset_id"`
	Asset   *Asset    `gorm:"constraint:OnDelete:RESTRICT;foreignKey:AssetID;references:ID" json:"asset,omitempty"`

	// Overrides the template layer's zIndex when set.
	LayerOrder *int `gorm:"column:layer_order" json:"layer_order,omitempty"`

	CustomConfig *thumbnail.CustomConfig `gorm:"type:jsonb;serializer:json" json:"custom_config,omitempty"`

	// Junction rows are hard-deleted (with their composition); a soft-delete
	// flag would fight the (composition_id, asset_role) uniqueness.
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CompositionAsset) TableName() string { return "composition_asset" }
