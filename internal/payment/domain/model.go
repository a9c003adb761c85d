package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	IntentStatusPending   = "pending"
	IntentStatusCompleted = "completed"
	IntentStatusFailed    = "failed"
)

// ContextItem is one cart line inside the metadata blob that round-trips
// through the gateway. Field names are part of the wire format.
type ContextItem struct {
	ProductID string `json:"productId"`
	Quantity  int64  `json:"quantity"`
	Title     string `json:"title,omitempty"`
	Price     string `json:"price"`
}

// OrderContext is the blob echoed back by the gateway on capture. It carries
// everything needed to commit an order without a prior database read.
type OrderContext struct {
	CustomerName  string        `json:"customerName"`
	CustomerEmail string        `json:"customerEmail"`
	Items         []ContextItem `json:"items"`
	DownloadToken string        `json:"downloadToken"`
	OrderNumber   string        `json:"orderNumber"`
}

// CaptureEvent is a verified, classified webhook delivery that should commit
// an order.
type CaptureEvent struct {
	Gateway          string
	EventType        string
	GatewayPaymentID string
	// AmountCents is the gateway-reported captured amount, used only as a
	// sanity check against the recomputed item sum.
	AmountCents int64
	Currency    string
	Context     OrderContext
}

// PaymentIntent records the pending side of a checkout before the gateway
// redirect. The orders unique constraint, not this row, provides webhook
// idempotency.
type PaymentIntent struct {
	ID            int64          `json:"id" gorm:"primaryKey"`
	OrderNumber   string         `json:"order_number" gorm:"type:text;not null;uniqueIndex"`
	Gateway       string         `json:"gateway" gorm:"type:text;not null"`
	DownloadToken string         `json:"-" gorm:"type:text;not null"`
	CustomerName  string         `json:"customer_name" gorm:"type:text"`
	CustomerEmail string         `json:"customer_email" gorm:"type:text;not null"`
	AmountCents   int64          `json:"amount_cents" gorm:"not null;default:0"`
	Currency      string         `json:"currency" gorm:"type:text;not null"`
	Items         datatypes.JSON `json:"items,omitempty" gorm:"type:jsonb"`
	Status        string         `json:"status" gorm:"type:text;not null;default:pending"`
	CreatedAt     time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time      `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PaymentIntent) TableName() string { return "payment_intents" }
