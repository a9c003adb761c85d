package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	CreateIntent(ctx context.Context, db *gorm.DB, intent *PaymentIntent) error
	FindIntentByOrderNumber(ctx context.Context, db *gorm.DB, orderNumber string) (*PaymentIntent, error)
	UpdateIntentStatus(ctx context.Context, db *gorm.DB, orderNumber, status string, at time.Time) error
}
