package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PendingOrder is a client-submitted, unpaid order waiting for a payment
// capture. The reference is the correlation key carried through the provider
// round-trip (checkout session metadata for Stripe, the PayPal order id for
// PayPal). Consumed exactly once by the reconciler, then deleted.
type PendingOrder struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Reference string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Payload   string    `gorm:"type:jsonb;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// PendingOrderPayload is the JSON document stored in PendingOrder.Payload.
// Price fields are snapshotted at checkout time so later catalog edits cannot
// change what the customer agreed to pay.
type PendingOrderPayload struct {
	ShopID            uuid.UUID       `json:"shop_id"`
	ProductID         *uuid.UUID      `json:"product_id,omitempty"`
	ProductName       string          `json:"product_name,omitempty"`
	CustomerName      string          `json:"customer_name"`
	CustomerEmail     string          `json:"customer_email"`
	CustomerPhone     string          `json:"customer_phone,omitempty"`
	PickupDate        *time.Time      `json:"pickup_date,omitempty"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	DepositPercentage *int            `json:"deposit_percentage,omitempty"`
	IsCustomOrder     bool            `json:"is_custom_order"`
	// OrderID is set for custom/quote flows where an Order row already exists
	// and the payment confirms it instead of creating a new one.
	OrderID *uuid.UUID `json:"order_id,omitempty"`
}

func (p *PendingOrder) DecodePayload() (*PendingOrderPayload, error) {
	var payload PendingOrderPayload
	if err := json.Unmarshal([]byte(p.Payload), &payload); err != nil {
		return nil, fmt.Errorf("decode pending order payload: %w", err)
	}
	return &payload, nil
}

func (p *PendingOrderPayload) Encode() (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode pending order payload: %w", err)
	}
	return string(raw), nil
}
