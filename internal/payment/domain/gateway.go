package domain

import (
	"context"
	"errors"
	"net/http"

	"github.com/neocommerce/storefront/internal/config"
)

// CreatePaymentRequest carries everything a gateway needs to open a payment
// session.
type CreatePaymentRequest struct {
	OrderNumber string
	AmountCents int64
	Currency    string
	Description string
	Context     OrderContext
	ReturnURL   string
	CancelURL   string
	CallbackURL string
}

type CreatePaymentResponse struct {
	PaymentURL       string
	GatewayPaymentID string
}

// Gateway is one payment processor integration. Verify authenticates a raw
// webhook delivery; Parse classifies it and extracts the capture.
type Gateway interface {
	Name() string
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error)
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*CaptureEvent, error)
}

// GatewayFactory builds a Gateway from the current credential snapshot, so
// hot-reloaded credentials take effect on the next call.
type GatewayFactory interface {
	Name() string
	New(creds config.GatewayCredentials) (Gateway, error)
}

var (
	ErrGatewayNotFound    = errors.New("gateway_not_found")
	ErrGatewayDisabled    = errors.New("gateway_disabled")
	ErrGatewayUnavailable = errors.New("payment_unavailable")
	ErrInvalidSignature   = errors.New("invalid_signature")
	ErrInvalidPayload     = errors.New("invalid_payload")
	ErrEventIgnored       = errors.New("event_ignored")
	ErrMalformedMetadata  = errors.New("malformed_metadata")
	ErrAmountMismatch     = errors.New("amount_mismatch")
	ErrDuplicateDelivery  = errors.New("duplicate_delivery")
)
