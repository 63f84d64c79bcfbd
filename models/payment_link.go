package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentProviderStripe = "stripe"
	PaymentProviderPayPal = "paypal"
)

// PaymentLink is the provider-specific payment target exposed at checkout,
// one row per (profile, provider). Deactivated when the account loses
// readiness, never deleted.
type PaymentLink struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_payment_links_profile_provider"`
	Provider  string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_payment_links_profile_provider"`
	AccountID string    `gorm:"type:varchar(255);not null"`
	IsActive  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
