package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type ListFilter struct {
	PaymentStatus string
	Limit         int
	CursorID      int64
}

type Repository interface {
	// InsertIfAbsent writes the order and its items exactly once per
	// order_number. It reports false without error when another delivery
	// already committed the same order.
	InsertIfAbsent(ctx context.Context, db *gorm.DB, order *Order, items []OrderItem) (bool, error)
	FindByOrderNumber(ctx context.Context, db *gorm.DB, orderNumber string) (*Order, error)
	FindCompletedByToken(ctx context.Context, db *gorm.DB, token string) (*Order, error)
	FindItems(ctx context.Context, db *gorm.DB, orderID int64) ([]OrderItem, error)
	MarkDownloaded(ctx context.Context, db *gorm.DB, orderID int64, at time.Time) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Order, error)
}
