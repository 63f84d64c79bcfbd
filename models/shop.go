package models

import (
	"time"

	"github.com/google/uuid"
)

// Shop carries only the fields this service reads or mutates: the
// custom-orders capability flag and the slug used for storefront cache keys.
type Shop struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID        uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Slug             string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name             string    `gorm:"type:varchar(255);not null"`
	OwnerEmail       string    `gorm:"type:varchar(255)"`
	IsCustomAccepted bool      `gorm:"not null;default:false"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}
