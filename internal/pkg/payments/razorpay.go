package payments

import (
	"errors"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"

	"github.com/bodhiverse/bodhika/internal/pkg/env"
)

// GatewayClient wraps the Razorpay SDK for order creation.
type GatewayClient struct {
	KeyID     string
	KeySecret string

	client *razorpay.Client
}

// CreatedOrder is the subset of the gateway order response the checkout
// frontend needs.
type CreatedOrder struct {
	OrderID  string
	Amount   decimal.Decimal
	Currency string
	Receipt  string
	KeyID    string
}

// NewGatewayClientFromEnv builds a Razorpay client from RAZORPAY_KEY_ID /
// RAZORPAY_KEY_SECRET.
func NewGatewayClientFromEnv() (*GatewayClient, error) {
	keyID := strings.TrimSpace(env.GetEnv("RAZORPAY_KEY_ID", ""))
	keySecret := strings.TrimSpace(env.GetEnv("RAZORPAY_KEY_SECRET", ""))
	if keyID == "" || keySecret == "" {
		return nil, errors.New("RAZORPAY_KEY_ID/RAZORPAY_KEY_SECRET are not configured")
	}

	return &GatewayClient{
		KeyID:     keyID,
		KeySecret: keySecret,
		client:    razorpay.NewClient(keyID, keySecret),
	}, nil
}

// CreateOrder registers an order with the gateway. Amount is in rupees and
// converted to the paise integer the API expects. Notes travel with the
// order and come back on webhooks, which lets webhook processing recover the
// plan context without a local lookup.
func (g *GatewayClient) CreateOrder(amount decimal.Decimal, currency, receipt string, notes map[string]interface{}) (*CreatedOrder, error) {
	if amount.IsNegative() || amount.IsZero() {
		return nil, errors.New("order amount must be positive")
	}
	if currency == "" {
		currency = "INR"
	}

	paise := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	data := map[string]interface{}{
		"amount":   paise,
		"currency": currency,
		"receipt":  receipt,
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay order create failed: %w", err)
	}

	orderID, _ := body["id"].(string)
	if orderID == "" {
		return nil, errors.New("razorpay order create returned no id")
	}

	return &CreatedOrder{
		OrderID:  orderID,
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		KeyID:    g.KeyID,
	}, nil
}
