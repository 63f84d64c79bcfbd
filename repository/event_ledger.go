package repository

import (
	"context"
	"errors"

	"github.com/boubamga9/Pattyly-sub000/models"

	"gorm.io/gorm"
)

// EventLedger converts the providers' at-least-once delivery into
// effectively-once processing. Claim races on the unique event_id index:
// whoever inserts the row owns the event, everyone else sees a duplicate-key
// error and backs off. No lock, no pre-read, the constraint is the arbiter.
type EventLedger interface {
	// Claim returns (true, nil) when the caller won the event and must
	// process it, (false, nil) when it was already claimed, and a non-nil
	// error only for real storage failures.
	Claim(ctx context.Context, eventID, eventType string) (bool, error)
	// Release gives a claim back after a transient handling failure so the
	// provider's redelivery is dispatched instead of acked as a duplicate.
	Release(ctx context.Context, eventID string) error
}

type stripeEventLedger struct {
	db *gorm.DB
}

func NewStripeEventLedger(db *gorm.DB) EventLedger {
	return &stripeEventLedger{db: db}
}

func (l *stripeEventLedger) Claim(ctx context.Context, eventID, eventType string) (bool, error) {
	err := l.db.WithContext(ctx).Create(&models.StripeEvent{
		EventID:   eventID,
		EventType: eventType,
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *stripeEventLedger) Release(ctx context.Context, eventID string) error {
	return l.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Delete(&models.StripeEvent{}).Error
}

type paypalEventLedger struct {
	db *gorm.DB
}

func NewPayPalEventLedger(db *gorm.DB) EventLedger {
	return &paypalEventLedger{db: db}
}

func (l *paypalEventLedger) Claim(ctx context.Context, eventID, eventType string) (bool, error) {
	err := l.db.WithContext(ctx).Create(&models.PayPalEvent{
		EventID:   eventID,
		EventType: eventType,
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *paypalEventLedger) Release(ctx context.Context, eventID string) error {
	return l.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Delete(&models.PayPalEvent{}).Error
}
