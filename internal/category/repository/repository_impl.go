package repository

import (
	"context"

	"github.com/neocommerce/storefront/internal/category/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, category *domain.Category) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO categories (id, name, slug, created_at)
		 VALUES (?, ?, ?, ?)`,
		category.ID,
		category.Name,
		category.Slug,
		category.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Category, error) {
	var c domain.Category
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, slug, created_at FROM categories WHERE id = ?`,
		id,
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.Category, error) {
	var items []domain.Category
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, slug, created_at FROM categories ORDER BY name ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, category *domain.Category) error {
	if category == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE categories SET name = ?, slug = ? WHERE id = ?`,
		category.Name,
		category.Slug,
		category.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	// Products keep their category_id; orphaned references are tolerated
	// by the catalog readers.
	return db.WithContext(ctx).Exec(`DELETE FROM categories WHERE id = ?`, id).Error
}
