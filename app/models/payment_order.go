package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment provider constants used across payment-related models.
const (
	PaymentProviderRazorpay = "razorpay"
)

const (
	OrderStatusCreated = "created"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

// PaymentOrder tracks a gateway order created on behalf of a user. The row is
// created before checkout opens and flipped to paid only after the signature
// on the confirmation has been verified.
type PaymentOrder struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	Provider        string          `gorm:"type:varchar(20);not null;default:'razorpay';index:ux_payment_orders_provider_order,unique,priority:1" json:"provider"`
	ProviderOrderID string          `gorm:"type:varchar(191);not null;index:ux_payment_orders_provider_order,unique,priority:2" json:"provider_order_id"`
	Receipt         string          `gorm:"type:varchar(64);not null" json:"receipt"`
	PlanType        string          `gorm:"type:varchar(20);not null" json:"plan_type"`
	WebinarID       *uint           `gorm:"default:null" json:"webinar_id,omitempty"`
	Amount          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency        string          `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`
	Status          string          `gorm:"type:varchar(20);not null;default:'created';index" json:"status"`
	PaymentID       string          `gorm:"type:varchar(191);default:''" json:"payment_id"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
