package domain

import "time"

type Product struct {
	ID                   int64     `json:"id" gorm:"primaryKey"`
	Title                string    `json:"title" gorm:"type:text;not null"`
	Description          string    `json:"description" gorm:"type:text"`
	OriginalPriceCents   int64     `json:"original_price_cents" gorm:"not null;default:0"`
	DiscountedPriceCents int64     `json:"discounted_price_cents" gorm:"not null;default:0"`
	CategoryID           *int64    `json:"category_id,omitempty"`
	CoverImageURL        string    `json:"cover_image_url" gorm:"type:text"`
	FileURL              string    `json:"file_url" gorm:"type:text"`
	Active               bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt            time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt            time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }

// Price returns the amount a buyer pays, preferring the discounted price
// when one is set.
func (p *Product) Price() int64 {
	if p.DiscountedPriceCents > 0 && p.DiscountedPriceCents < p.OriginalPriceCents {
		return p.DiscountedPriceCents
	}
	return p.OriginalPriceCents
}
