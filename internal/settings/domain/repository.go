package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Get(ctx context.Context, db *gorm.DB) (*Settings, error)
	Update(ctx context.Context, db *gorm.DB, settings *Settings) error
}
