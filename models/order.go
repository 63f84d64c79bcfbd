package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order statuses. A paid order always enters at StatusConfirmed; custom order
// requests live as StatusToVerify/StatusQuoted until the customer pays.
const (
	StatusToVerify  = "to_verify"
	StatusQuoted    = "quoted"
	StatusConfirmed = "confirmed"
	StatusReady     = "ready"
	StatusCompleted = "completed"
	StatusRefused   = "refused"
	StatusCancelled = "cancelled"
)

type Order struct {
	ID                    uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ShopID                uuid.UUID       `gorm:"type:uuid;not null;index" json:"shop_id"`
	ProductID             *uuid.UUID      `gorm:"type:uuid;index" json:"product_id,omitempty"`
	CustomerName          string          `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail         string          `gorm:"type:varchar(255);not null" json:"customer_email"`
	CustomerPhone         string          `gorm:"type:varchar(50)" json:"customer_phone,omitempty"`
	ProductName           string          `gorm:"type:varchar(255)" json:"product_name,omitempty"`
	PickupDate            *time.Time      `json:"pickup_date,omitempty"`
	IsCustomOrder         bool            `gorm:"not null;default:false" json:"is_custom_order"`
	TotalAmount           decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	PaidAmount            decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"paid_amount"`
	RemainingAmount       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"remaining_amount"`
	Status                string          `gorm:"type:varchar(20);not null;default:'to_verify';index" json:"status"`
	StripeSessionID       *string         `gorm:"type:varchar(255);uniqueIndex" json:"stripe_session_id,omitempty"`
	StripePaymentIntentID *string         `gorm:"type:varchar(255);index" json:"stripe_payment_intent_id,omitempty"`
	PayPalOrderID         *string         `gorm:"type:varchar(255);uniqueIndex" json:"paypal_order_id,omitempty"`
	PayPalCaptureID       *string         `gorm:"type:varchar(255);uniqueIndex" json:"paypal_capture_id,omitempty"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt             gorm.DeletedAt  `gorm:"index" json:"-"`
}
