package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Episode struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ShowID uuid.UUID `gorm:"type:uuid;not null;index" json:"show_id"`
	Show   *Show     `gorm:"constraint:OnDelete:CASCADE;foreignKey:ShowID;references:ID" json:"show,omitempty"`

	Title         string `gorm:"type:text;not null" json:"title"`
	EpisodeNumber int    `gorm:"not null;default:0;index" json:"episode_number"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Episode) TableName() string { return "episode" }
