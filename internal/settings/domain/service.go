package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Get(ctx context.Context) (*Response, error)
	Public(ctx context.Context) (*PublicResponse, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
}

type UpdateRequest struct {
	PaymentEnabled   *bool `json:"payment_enabled"`
	CryptomusEnabled *bool `json:"cryptomus_enabled"`
	PayPalEnabled    *bool `json:"paypal_enabled"`
}

type Response struct {
	PaymentEnabled   bool      `json:"payment_enabled"`
	CryptomusEnabled bool      `json:"cryptomus_enabled"`
	PayPalEnabled    bool      `json:"paypal_enabled"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PublicResponse exposes only the flags the storefront needs to pick a
// checkout path.
type PublicResponse struct {
	PaymentEnabled   bool `json:"payment_enabled"`
	CryptomusEnabled bool `json:"cryptomus_enabled"`
	PayPalEnabled    bool `json:"paypal_enabled"`
}

var ErrNotFound = errors.New("not_found")
