package repository

import (
	"context"
	"errors"

	"github.com/boubamga9/Pattyly-sub000/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository is the order aggregate's data access. The FindBy* lookups
// return (nil, nil) when no row matches so callers can distinguish "absent"
// from a storage failure without inspecting gorm sentinels.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByStripeSessionID(ctx context.Context, sessionID string) (*models.Order, error)
	FindByStripePaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error)
	FindByPayPalOrderID(ctx context.Context, paypalOrderID string) (*models.Order, error)
	FindByPayPalCaptureID(ctx context.Context, captureID string) (*models.Order, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
}

type gormOrderRepo struct {
	db *gorm.DB
}

func NewGormOrderRepo(db *gorm.DB) OrderRepository {
	return &gormOrderRepo{db: db}
}

func (r *gormOrderRepo) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *gormOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *gormOrderRepo) FindByStripeSessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	return r.findOne(ctx, "stripe_session_id = ?", sessionID)
}

func (r *gormOrderRepo) FindByStripePaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	return r.findOne(ctx, "stripe_payment_intent_id = ?", paymentIntentID)
}

func (r *gormOrderRepo) FindByPayPalOrderID(ctx context.Context, paypalOrderID string) (*models.Order, error) {
	return r.findOne(ctx, "paypal_order_id = ?", paypalOrderID)
}

func (r *gormOrderRepo) FindByPayPalCaptureID(ctx context.Context, captureID string) (*models.Order, error) {
	return r.findOne(ctx, "paypal_capture_id = ?", captureID)
}

func (r *gormOrderRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gormOrderRepo) findOne(ctx context.Context, query string, arg interface{}) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where(query, arg).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}
