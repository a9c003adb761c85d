package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/neocommerce/storefront/internal/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, title, description, original_price_cents, discounted_price_cents,
		                       category_id, cover_image_url, file_url, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.Title,
		product.Description,
		product.OriginalPriceCents,
		product.DiscountedPriceCents,
		product.CategoryID,
		product.CoverImageURL,
		product.FileURL,
		product.Active,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, title, description, original_price_cents, discounted_price_cents,
		        category_id, cover_image_url, file_url, active, created_at, updated_at
		 FROM products WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Product, error) {
	stmt := db.WithContext(ctx).Model(&domain.Product{})
	if filter.ActiveOnly {
		stmt = stmt.Where("active = ?", true)
	}
	if filter.CategoryID != "" {
		categoryID, err := snowflake.ParseString(filter.CategoryID)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		stmt = stmt.Where("category_id = ?", categoryID.Int64())
	}

	var items []domain.Product
	if err := stmt.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE products
		 SET title = ?, description = ?, original_price_cents = ?, discounted_price_cents = ?,
		     category_id = ?, cover_image_url = ?, file_url = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		product.Title,
		product.Description,
		product.OriginalPriceCents,
		product.DiscountedPriceCents,
		product.CategoryID,
		product.CoverImageURL,
		product.FileURL,
		product.Active,
		product.UpdatedAt,
		product.ID,
	).Error
}
