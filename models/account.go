package models

import (
	"time"

	"github.com/google/uuid"
)

// StripeConnectAccount tracks a tenant's Connect onboarding state.
// IsActive is derived: charges enabled AND payouts enabled.
type StripeConnectAccount struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID        uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	AccountID        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	ChargesEnabled   bool      `gorm:"not null;default:false"`
	PayoutsEnabled   bool      `gorm:"not null;default:false"`
	DetailsSubmitted bool      `gorm:"not null;default:false"`
	IsActive         bool      `gorm:"not null;default:false"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

// PayPalAccount tracks a tenant's PayPal merchant onboarding state.
type PayPalAccount struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	MerchantID         string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PermissionsGranted bool      `gorm:"not null;default:false"`
	EmailConfirmed     bool      `gorm:"not null;default:false"`
	IsActive           bool      `gorm:"not null;default:false"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}
