package domain

import "time"

// Settings is the singleton storefront configuration row. The table enforces
// id = 1 so there is never more than one row.
type Settings struct {
	ID               int64     `json:"-" gorm:"primaryKey"`
	PaymentEnabled   bool      `json:"payment_enabled" gorm:"not null;default:false"`
	CryptomusEnabled bool      `json:"cryptomus_enabled" gorm:"not null;default:true"`
	PayPalEnabled    bool      `json:"paypal_enabled" gorm:"column:paypal_enabled;not null;default:false"`
	CreatedAt        time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Settings) TableName() string { return "settings" }
