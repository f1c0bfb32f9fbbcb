package payments

import "github.com/shopspring/decimal"

// ConfirmationInput is the normalized shape of a checkout confirmation as
// posted back by the client after the gateway captures a charge.
type ConfirmationInput struct {
	UserID    uint
	PaymentID string
	OrderID   string
	Signature string
	PlanType  string
	Amount    decimal.Decimal
	WebinarID *uint
}
