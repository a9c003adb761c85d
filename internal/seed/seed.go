package seed

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// EnsureSettings seeds the singleton storefront settings row. Payments start
// disabled so a fresh install runs in test mode until credentials are set.
func EnsureSettings(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Exec(`
		INSERT INTO settings (id, payment_enabled, cryptomus_enabled, paypal_enabled, created_at, updated_at)
		VALUES (1, FALSE, TRUE, FALSE, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO NOTHING
	`).Error
}
