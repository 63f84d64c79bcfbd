package repository

import (
	"context"
	"errors"
	"time"

	"github.com/boubamga9/Pattyly-sub000/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PendingOrderRepository interface {
	Create(ctx context.Context, pending *models.PendingOrder) error
	// FindByReference returns (nil, nil) when no pending order matches.
	FindByReference(ctx context.Context, reference string) (*models.PendingOrder, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByReference(ctx context.Context, reference string) error
	// DeleteExpired garbage-collects pending orders that were never paid.
	DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error)
}

type gormPendingOrderRepo struct {
	db *gorm.DB
}

func NewGormPendingOrderRepo(db *gorm.DB) PendingOrderRepository {
	return &gormPendingOrderRepo{db: db}
}

func (r *gormPendingOrderRepo) Create(ctx context.Context, pending *models.PendingOrder) error {
	return r.db.WithContext(ctx).Create(pending).Error
}

func (r *gormPendingOrderRepo) FindByReference(ctx context.Context, reference string) (*models.PendingOrder, error) {
	var pending models.PendingOrder
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&pending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

func (r *gormPendingOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.PendingOrder{}, "id = ?", id).Error
}

func (r *gormPendingOrderRepo) DeleteByReference(ctx context.Context, reference string) error {
	return r.db.WithContext(ctx).Delete(&models.PendingOrder{}, "reference = ?", reference).Error
}

func (r *gormPendingOrderRepo) DeleteExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", olderThan).
		Delete(&models.PendingOrder{})
	return result.RowsAffected, result.Error
}
