package repository

import (
	"context"
	"errors"
	"time"

	"github.com/boubamga9/Pattyly-sub000/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserProductRepository interface {
	// UpsertCustomer records the stripe customer id for a profile, keyed by
	// profile_id so re-delivery converges instead of duplicating rows.
	UpsertCustomer(ctx context.Context, profileID uuid.UUID, customerID string) error
	// FindByStripeCustomerID returns (nil, nil) when the customer is unknown.
	FindByStripeCustomerID(ctx context.Context, customerID string) (*models.UserProduct, error)
	// SetSubscription updates plan state for the profile owning customerID
	// and returns the updated row so callers can apply shop side effects.
	SetSubscription(ctx context.Context, customerID, subscriptionID, productID, status string) (*models.UserProduct, error)
	// SetStatusByCustomerID flips only the status (invoice events carry no
	// reliable product data).
	SetStatusByCustomerID(ctx context.Context, customerID, status string) (*models.UserProduct, error)
}

type gormUserProductRepo struct {
	db *gorm.DB
}

func NewGormUserProductRepo(db *gorm.DB) UserProductRepository {
	return &gormUserProductRepo{db: db}
}

func (r *gormUserProductRepo) UpsertCustomer(ctx context.Context, profileID uuid.UUID, customerID string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "profile_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"stripe_customer_id": customerID,
			"updated_at":         time.Now(),
		}),
	}).Create(&models.UserProduct{
		ProfileID:          profileID,
		StripeCustomerID:   customerID,
		SubscriptionStatus: models.SubscriptionInactive,
	}).Error
}

func (r *gormUserProductRepo) FindByStripeCustomerID(ctx context.Context, customerID string) (*models.UserProduct, error) {
	var up models.UserProduct
	err := r.db.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&up).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &up, nil
}

func (r *gormUserProductRepo) SetSubscription(ctx context.Context, customerID, subscriptionID, productID, status string) (*models.UserProduct, error) {
	return r.updateByCustomerID(ctx, customerID, map[string]interface{}{
		"subscription_id":     subscriptionID,
		"product_id":          productID,
		"subscription_status": status,
		"updated_at":          time.Now(),
	})
}

func (r *gormUserProductRepo) SetStatusByCustomerID(ctx context.Context, customerID, status string) (*models.UserProduct, error) {
	return r.updateByCustomerID(ctx, customerID, map[string]interface{}{
		"subscription_status": status,
		"updated_at":          time.Now(),
	})
}

func (r *gormUserProductRepo) updateByCustomerID(ctx context.Context, customerID string, updates map[string]interface{}) (*models.UserProduct, error) {
	var up models.UserProduct
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.UserProduct{}).
			Where("stripe_customer_id = ?", customerID).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("stripe_customer_id = ?", customerID).First(&up).Error
	})
	if err != nil {
		return nil, err
	}
	return &up, nil
}
