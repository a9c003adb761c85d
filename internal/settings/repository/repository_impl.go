package repository

import (
	"context"

	"github.com/neocommerce/storefront/internal/settings/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Get(ctx context.Context, db *gorm.DB) (*domain.Settings, error) {
	var s domain.Settings
	err := db.WithContext(ctx).Raw(
		`SELECT id, payment_enabled, cryptomus_enabled, paypal_enabled, created_at, updated_at
		 FROM settings WHERE id = 1`,
	).Scan(&s).Error
	if err != nil {
		return nil, err
	}
	if s.ID == 0 {
		return nil, nil
	}
	return &s, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, settings *domain.Settings) error {
	if settings == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE settings
		 SET payment_enabled = ?, cryptomus_enabled = ?, paypal_enabled = ?, updated_at = ?
		 WHERE id = 1`,
		settings.PaymentEnabled,
		settings.CryptomusEnabled,
		settings.PayPalEnabled,
		settings.UpdatedAt,
	).Error
}
