package repository

import (
	"context"
	"errors"
	"time"

	"github.com/boubamga9/Pattyly-sub000/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShopRepository interface {
	// FindByID / FindByProfileID return (nil, nil) when no shop matches.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error)
	FindByProfileID(ctx context.Context, profileID uuid.UUID) (*models.Shop, error)
	SetCustomAccepted(ctx context.Context, profileID uuid.UUID, accepted bool) error
}

type gormShopRepo struct {
	db *gorm.DB
}

func NewGormShopRepo(db *gorm.DB) ShopRepository {
	return &gormShopRepo{db: db}
}

func (r *gormShopRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *gormShopRepo) FindByProfileID(ctx context.Context, profileID uuid.UUID) (*models.Shop, error) {
	return r.findOne(ctx, "profile_id = ?", profileID)
}

func (r *gormShopRepo) SetCustomAccepted(ctx context.Context, profileID uuid.UUID, accepted bool) error {
	return r.db.WithContext(ctx).Model(&models.Shop{}).
		Where("profile_id = ?", profileID).
		Updates(map[string]interface{}{
			"is_custom_accepted": accepted,
			"updated_at":         time.Now(),
		}).Error
}

func (r *gormShopRepo) findOne(ctx context.Context, query string, arg interface{}) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).Where(query, arg).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &shop, nil
}
