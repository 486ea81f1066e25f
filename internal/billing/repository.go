package billing

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, upgrade *PremiumUpgrade) error
	GetByOrderID(ctx context.Context, orderID string) (*PremiumUpgrade, error)
	Update(ctx context.Context, upgrade *PremiumUpgrade) error
	ListByUser(ctx context.Context, userID uint) ([]PremiumUpgrade, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, upgrade *PremiumUpgrade) error {
	return r.db.WithContext(ctx).Create(upgrade).Error
}

func (r *repository) GetByOrderID(ctx context.Context, orderID string) (*PremiumUpgrade, error) {
	var upgrade PremiumUpgrade
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&upgrade).Error
	if err != nil {
		return nil, err
	}
	return &upgrade, nil
}

func (r *repository) Update(ctx context.Context, upgrade *PremiumUpgrade) error {
	return r.db.WithContext(ctx).Save(upgrade).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]PremiumUpgrade, error) {
	var upgrades []PremiumUpgrade
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&upgrades).Error
	return upgrades, err
}
