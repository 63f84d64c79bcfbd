package models

import "time"

// StripeEvent and PayPalEvent are the idempotence ledgers: one row per
// provider event id, ever. The unique index on EventID is the concurrency
// arbiter: inserting the row is the claim.
type StripeEvent struct {
	ID          uint      `gorm:"primaryKey"`
	EventID     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	EventType   string    `gorm:"type:varchar(100);not null"`
	ProcessedAt time.Time `gorm:"autoCreateTime"`
}

type PayPalEvent struct {
	ID          uint      `gorm:"primaryKey"`
	EventID     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	EventType   string    `gorm:"type:varchar(100);not null"`
	ProcessedAt time.Time `gorm:"autoCreateTime"`
}
