package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Archive(ctx context.Context, id string) (*Response, error)

	// PublicGet and PublicList only surface active products.
	PublicGet(ctx context.Context, id string) (*Response, error)
	PublicList(ctx context.Context) ([]Response, error)
}

type ListRequest struct {
	ActiveOnly bool
	CategoryID string
}

type CreateRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	OriginalPrice   string `json:"original_price"`
	DiscountedPrice string `json:"discounted_price"`
	CategoryID      string `json:"category_id"`
	CoverImageURL   string `json:"cover_image_url"`
	FileURL         string `json:"file_url"`
	Active          *bool  `json:"active"`
}

type UpdateRequest struct {
	ID              string  `json:"-"`
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	OriginalPrice   *string `json:"original_price"`
	DiscountedPrice *string `json:"discounted_price"`
	CategoryID      *string `json:"category_id"`
	CoverImageURL   *string `json:"cover_image_url"`
	FileURL         *string `json:"file_url"`
	Active          *bool   `json:"active"`
}

type Response struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	OriginalPrice   string    `json:"original_price"`
	DiscountedPrice string    `json:"discounted_price"`
	CategoryID      string    `json:"category_id,omitempty"`
	CoverImageURL   string    `json:"cover_image_url,omitempty"`
	FileURL         string    `json:"file_url,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

var (
	ErrInvalidTitle = errors.New("invalid_title")
	ErrInvalidPrice = errors.New("invalid_price")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
)
