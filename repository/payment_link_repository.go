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

type PaymentLinkRepository interface {
	// UpsertActive creates or reactivates the (profile, provider) link.
	UpsertActive(ctx context.Context, profileID uuid.UUID, provider, accountID string) error
	// Deactivate flips is_active off but keeps the row for history.
	Deactivate(ctx context.Context, profileID uuid.UUID, provider string) error
	// FindActive returns (nil, nil) when the profile has no active link for
	// the provider.
	FindActive(ctx context.Context, profileID uuid.UUID, provider string) (*models.PaymentLink, error)
}

type gormPaymentLinkRepo struct {
	db *gorm.DB
}

func NewGormPaymentLinkRepo(db *gorm.DB) PaymentLinkRepository {
	return &gormPaymentLinkRepo{db: db}
}

func (r *gormPaymentLinkRepo) UpsertActive(ctx context.Context, profileID uuid.UUID, provider, accountID string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "profile_id"}, {Name: "provider"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"account_id": accountID,
			"is_active":  true,
			"updated_at": time.Now(),
		}),
	}).Create(&models.PaymentLink{
		ProfileID: profileID,
		Provider:  provider,
		AccountID: accountID,
		IsActive:  true,
	}).Error
}

func (r *gormPaymentLinkRepo) FindActive(ctx context.Context, profileID uuid.UUID, provider string) (*models.PaymentLink, error) {
	var link models.PaymentLink
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND provider = ? AND is_active = ?", profileID, provider, true).
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *gormPaymentLinkRepo) Deactivate(ctx context.Context, profileID uuid.UUID, provider string) error {
	return r.db.WithContext(ctx).Model(&models.PaymentLink{}).
		Where("profile_id = ? AND provider = ?", profileID, provider).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		}).Error
}
