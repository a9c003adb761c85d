package domain

import (
	"context"
	"errors"
	"time"

	"github.com/neocommerce/storefront/pkg/db/pagination"
)

type Service interface {
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
}

type ListRequest struct {
	PaymentStatus string
	Pagination    pagination.Pagination
}

type ListResponse struct {
	Orders   []Response           `json:"orders"`
	PageInfo *pagination.PageInfo `json:"page_info"`
}

type Response struct {
	ID               string     `json:"id"`
	OrderNumber      string     `json:"order_number"`
	CustomerName     string     `json:"customer_name"`
	CustomerEmail    string     `json:"customer_email"`
	AmountPaid       string     `json:"amount_paid"`
	Currency         string     `json:"currency"`
	PaymentStatus    string     `json:"payment_status"`
	Gateway          string     `json:"gateway"`
	GatewayPaymentID string     `json:"gateway_payment_id,omitempty"`
	DownloadedAt     *time.Time `json:"downloaded_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

var (
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
