package repository

import (
	"context"
	"time"

	"github.com/neocommerce/storefront/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CreateIntent(ctx context.Context, db *gorm.DB, intent *domain.PaymentIntent) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payment_intents (id, order_number, gateway, download_token, customer_name,
		                              customer_email, amount_cents, currency, items, status,
		                              created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		intent.ID,
		intent.OrderNumber,
		intent.Gateway,
		intent.DownloadToken,
		intent.CustomerName,
		intent.CustomerEmail,
		intent.AmountCents,
		intent.Currency,
		intent.Items,
		intent.Status,
		intent.CreatedAt,
		intent.UpdatedAt,
	).Error
}

func (r *repo) FindIntentByOrderNumber(ctx context.Context, db *gorm.DB, orderNumber string) (*domain.PaymentIntent, error) {
	var intent domain.PaymentIntent
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_number, gateway, download_token, customer_name, customer_email,
		        amount_cents, currency, items, status, created_at, updated_at
		 FROM payment_intents WHERE order_number = ?`,
		orderNumber,
	).Scan(&intent).Error
	if err != nil {
		return nil, err
	}
	if intent.ID == 0 {
		return nil, nil
	}
	return &intent, nil
}

func (r *repo) UpdateIntentStatus(ctx context.Context, db *gorm.DB, orderNumber, status string, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payment_intents SET status = ?, updated_at = ? WHERE order_number = ?`,
		status,
		at,
		orderNumber,
	).Error
}
