package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/stagelight/showreel-backend/internal/thumbnail"
)

// ThumbnailTemplate is a named, versioned layout definition. A template
// revision is immutable once a composition references it; the composition
// freezes the version string at generation time.
type ThumbnailTemplate struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ShowID *uuid.UUID `gorm:"type:uuid;index:idx_template_show_active,priority:1" json:"show_id,omitempty"`
	Show   *Show      `gorm:"foreignKey:ShowID;references:ID" json:"show,omitempty"`

	TemplateName    string `gorm:"type:varchar(100);not null;index:idx_template_name_version,priority:1" json:"template_name"`
	TemplateVersion string `gorm:"type:varchar(20);not null;index:idx_template_name_version,priority:2" json:"template_version"`

	RequiredRoles []string `gorm:"type:jsonb;serializer:json;not null;default:'[]'" json:"required_roles"`
	OptionalRoles []string `gorm:"type:jsonb;serializer:json;not null;default:'[]'" json:"optional_roles"`

	ConditionalRoles map[string]thumbnail.ConditionalRole `gorm:"type:jsonb;serializer:json" json:"conditional_roles,omitempty"`
	PairedRoles      map[string]string                    `gorm:"type:jsonb;serializer:json" json:"paired_roles,omitempty"`

	LayoutConfig    thumbnail.LayoutConfig               `gorm:"type:jsonb;serializer:json;not null;default:'{}'" json:"layout_config"`
	FormatOverrides map[string]thumbnail.FormatOverride  `gorm:"type:jsonb;serializer:json" json:"format_overrides,omitempty"`

	// Text layers are rendered by a separate pipeline; compositing passes
	// them through untouched.
	TextLayers datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'" json:"text_layers"`

	IsActive bool `gorm:"not null;default:true;index:idx_template_show_active,priority:2" json:"is_active"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ThumbnailTemplate) TableName() string { return "thumbnail_template" }

// Spec returns the validation-relevant slice of the template.
func (t *ThumbnailTemplate) Spec() thumbnail.TemplateSpec {
	return thumbnail.TemplateSpec{
		RequiredRoles:    t.RequiredRoles,
		OptionalRoles:    t.OptionalRoles,
		ConditionalRoles: t.ConditionalRoles,
		PairedRoles:      t.PairedRoles,
	}
}
