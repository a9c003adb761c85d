package domain

import (
	"context"
	"net/http"
)

// Service ingests gateway webhooks and commits completed orders.
type Service interface {
	HandleWebhook(ctx context.Context, gateway string, payload []byte, headers http.Header) error
}
