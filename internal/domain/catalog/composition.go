package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Generation status state machine:
// DRAFT -> GENERATING -> {COMPLETED, FAILED}; COMPLETED/FAILED -> GENERATING
// on regenerate. No other transitions are permitted.
const (
	GenerationStatusDraft      = "DRAFT"
	GenerationStatusGenerating = "GENERATING"
	GenerationStatusCompleted  = "COMPLETED"
	GenerationStatusFailed     = "FAILED"
)

// ThumbnailComposition is one concrete thumbnail-generation job binding
// assets to a template's role slots.
type ThumbnailComposition struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EpisodeID uuid.UUID `gorm:"type:uuid;not null;index" json:"episode_id"`
	Episode   *Episode  `gorm:"foreignKey:EpisodeID;references:ID" json:"episode,omitempty"`

	TemplateID uuid.UUID          `gorm:"type:uuid;not null;index" json:"template_id"`
	Template   *ThumbnailTemplate `gorm:"foreignKey:TemplateID;references:ID" json:"template,omitempty"`
	// Frozen at creation so later template edits never change history.
	TemplateVersion string `gorm:"type:varchar(20);not null;default:''" json:"template_version"`

	CompositionName string `gorm:"type:text;not null;default:''" json:"composition_name"`

	GenerationStatus string `gorm:"type:text;not null;default:'DRAFT';index" json:"generation_status"`

	SelectedFormats    []string `gorm:"type:jsonb;serializer:json;not null;default:'[]'" json:"selected_formats"`
	ValidationErrors   []string `gorm:"type:jsonb;serializer:json" json:"validation_errors,omitempty"`
	ValidationWarnings []string `gorm:"type:jsonb;serializer:json" json:"validation_warnings,omitempty"`
	// Per-format render/upload failures, distinct from template validation.
	GenerationErrors []string          `gorm:"type:jsonb;serializer:json" json:"generation_errors,omitempty"`
	GeneratedFormats map[string]string `gorm:"type:jsonb;serializer:json" json:"generated_formats,omitempty"`

	CompositionAssets []CompositionAsset `gorm:"constraint:OnDelete:CASCADE;foreignKey:CompositionID;references:ID" json:"composition_assets,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ThumbnailComposition) TableName() string { return "thumbnail_composition" }
