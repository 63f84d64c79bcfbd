package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SubscriptionActive   = "active"
	SubscriptionInactive = "inactive"
)

// UserProduct maps a tenant profile to its billing-provider subscription.
// ProductID decides the plan tier; SubscriptionStatus drives the shop's
// custom-orders capability.
type UserProduct struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	StripeCustomerID   string    `gorm:"type:varchar(255);index"`
	ProductID          string    `gorm:"type:varchar(255)"`
	SubscriptionID     string    `gorm:"type:varchar(255)"`
	SubscriptionStatus string    `gorm:"type:varchar(20);not null;default:'inactive'"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}
