package repository

import (
	"context"
	"errors"
	"time"

	"github.com/boubamga9/Pattyly-sub000/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Account repositories use natural-key upserts (provider account id, profile
// id) so out-of-order or re-delivered readiness events converge to the same
// final row.

type StripeConnectAccountRepository interface {
	// FindByAccountID returns (nil, nil) when the account is unknown.
	FindByAccountID(ctx context.Context, accountID string) (*models.StripeConnectAccount, error)
	Upsert(ctx context.Context, account *models.StripeConnectAccount) error
}

type gormStripeConnectAccountRepo struct {
	db *gorm.DB
}

func NewGormStripeConnectAccountRepo(db *gorm.DB) StripeConnectAccountRepository {
	return &gormStripeConnectAccountRepo{db: db}
}

func (r *gormStripeConnectAccountRepo) FindByAccountID(ctx context.Context, accountID string) (*models.StripeConnectAccount, error) {
	var account models.StripeConnectAccount
	err := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *gormStripeConnectAccountRepo) Upsert(ctx context.Context, account *models.StripeConnectAccount) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"charges_enabled":   account.ChargesEnabled,
			"payouts_enabled":   account.PayoutsEnabled,
			"details_submitted": account.DetailsSubmitted,
			"is_active":         account.IsActive,
			"updated_at":        time.Now(),
		}),
	}).Create(account).Error
}

type PayPalAccountRepository interface {
	Upsert(ctx context.Context, account *models.PayPalAccount) error
}

type gormPayPalAccountRepo struct {
	db *gorm.DB
}

func NewGormPayPalAccountRepo(db *gorm.DB) PayPalAccountRepository {
	return &gormPayPalAccountRepo{db: db}
}

func (r *gormPayPalAccountRepo) Upsert(ctx context.Context, account *models.PayPalAccount) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "profile_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"merchant_id":         account.MerchantID,
			"permissions_granted": account.PermissionsGranted,
			"email_confirmed":     account.EmailConfirmed,
			"is_active":           account.IsActive,
			"updated_at":          time.Now(),
		}),
	}).Create(account).Error
}
