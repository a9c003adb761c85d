package repository

import (
	"context"
	"time"

	"github.com/neocommerce/storefront/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertIfAbsent(ctx context.Context, db *gorm.DB, order *domain.Order, items []domain.OrderItem) (bool, error) {
	inserted := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			`INSERT INTO orders (id, order_number, customer_name, customer_email, amount_paid_cents,
			                     currency, payment_status, gateway, gateway_payment_id, download_token,
			                     download_expires_at, downloaded_at, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (order_number) DO NOTHING`,
			order.ID,
			order.OrderNumber,
			order.CustomerName,
			order.CustomerEmail,
			order.AmountPaidCents,
			order.Currency,
			order.PaymentStatus,
			order.Gateway,
			order.GatewayPaymentID,
			order.DownloadToken,
			order.DownloadExpiresAt,
			order.DownloadedAt,
			order.CreatedAt,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		inserted = true

		for _, item := range items {
			if err := tx.Exec(
				`INSERT INTO order_items (id, order_id, product_id, title, unit_price_cents, quantity, position)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				item.ID,
				order.ID,
				item.ProductID,
				item.Title,
				item.UnitPriceCents,
				item.Quantity,
				item.Position,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return inserted, nil
}

func (r *repo) FindByOrderNumber(ctx context.Context, db *gorm.DB, orderNumber string) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_number, customer_name, customer_email, amount_paid_cents, currency,
		        payment_status, gateway, gateway_payment_id, download_token, download_expires_at,
		        downloaded_at, created_at
		 FROM orders WHERE order_number = ?`,
		orderNumber,
	).Scan(&o).Error
	if err != nil {
		return nil, err
	}
	if o.ID == 0 {
		return nil, nil
	}
	return &o, nil
}

func (r *repo) FindCompletedByToken(ctx context.Context, db *gorm.DB, token string) (*domain.Order, error) {
	var o domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_number, customer_name, customer_email, amount_paid_cents, currency,
		        payment_status, gateway, gateway_payment_id, download_token, download_expires_at,
		        downloaded_at, created_at
		 FROM orders WHERE download_token = ? AND payment_status = ?`,
		token,
		domain.StatusCompleted,
	).Scan(&o).Error
	if err != nil {
		return nil, err
	}
	if o.ID == 0 {
		return nil, nil
	}
	return &o, nil
}

func (r *repo) FindItems(ctx context.Context, db *gorm.DB, orderID int64) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_id, product_id, title, unit_price_cents, quantity, position
		 FROM order_items WHERE order_id = ? ORDER BY position ASC`,
		orderID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) MarkDownloaded(ctx context.Context, db *gorm.DB, orderID int64, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders SET downloaded_at = ? WHERE id = ? AND downloaded_at IS NULL`,
		at,
		orderID,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Order, error) {
	stmt := db.WithContext(ctx).Model(&domain.Order{})
	if filter.PaymentStatus != "" {
		stmt = stmt.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.CursorID != 0 {
		stmt = stmt.Where("id < ?", filter.CursorID)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	var items []domain.Order
	if err := stmt.Order("id DESC").Limit(limit + 1).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
