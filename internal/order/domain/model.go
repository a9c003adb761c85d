package domain

import "time"

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// GatewayTestMode is the sentinel recorded when payments are disabled and
// checkout bypasses the gateways entirely.
const GatewayTestMode = "test-mode"

type Order struct {
	ID                int64      `json:"id" gorm:"primaryKey"`
	OrderNumber       string     `json:"order_number" gorm:"type:text;not null;uniqueIndex"`
	CustomerName      string     `json:"customer_name" gorm:"type:text"`
	CustomerEmail     string     `json:"customer_email" gorm:"type:text;not null"`
	AmountPaidCents   int64      `json:"amount_paid_cents" gorm:"not null;default:0"`
	Currency          string     `json:"currency" gorm:"type:text;not null"`
	PaymentStatus     string     `json:"payment_status" gorm:"type:text;not null;default:pending"`
	Gateway           string     `json:"gateway" gorm:"type:text;not null"`
	GatewayPaymentID  *string    `json:"gateway_payment_id,omitempty" gorm:"type:text"`
	DownloadToken     string     `json:"-" gorm:"type:text;not null;uniqueIndex"`
	DownloadExpiresAt time.Time  `json:"download_expires_at" gorm:"not null"`
	DownloadedAt      *time.Time `json:"downloaded_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID             int64  `json:"id" gorm:"primaryKey"`
	OrderID        int64  `json:"order_id" gorm:"not null;index"`
	ProductID      int64  `json:"product_id" gorm:"not null"`
	Title          string `json:"title" gorm:"type:text"`
	UnitPriceCents int64  `json:"unit_price_cents" gorm:"not null;default:0"`
	Quantity       int64  `json:"quantity" gorm:"not null;default:1"`
	Position       int64  `json:"position" gorm:"not null;default:0"`
}

func (OrderItem) TableName() string { return "order_items" }

// Total is the recomputed order amount from snapshotted prices.
func Total(items []OrderItem) int64 {
	var sum int64
	for _, item := range items {
		sum += item.UnitPriceCents * item.Quantity
	}
	return sum
}
