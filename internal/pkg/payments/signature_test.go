package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signHex(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature(t *testing.T) {
	const secret = "test_key_secret"
	valid := signHex("order_abc|pay_xyz", secret)

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		secret    string
		want      bool
	}{
		{name: "valid", orderID: "order_abc", paymentID: "pay_xyz", signature: valid, secret: secret, want: true},
		{name: "uppercase hex accepted", orderID: "order_abc", paymentID: "pay_xyz", signature: stringsToUpper(valid), secret: secret, want: true},
		{name: "tampered signature", orderID: "order_abc", paymentID: "pay_xyz", signature: signHex("order_abc|pay_other", secret), secret: secret, want: false},
		{name: "wrong secret", orderID: "order_abc", paymentID: "pay_xyz", signature: valid, secret: "other", want: false},
		{name: "not hex", orderID: "order_abc", paymentID: "pay_xyz", signature: "zz", secret: secret, want: false},
		{name: "empty signature", orderID: "order_abc", paymentID: "pay_xyz", signature: "", secret: secret, want: false},
		{name: "empty secret", orderID: "order_abc", paymentID: "pay_xyz", signature: valid, secret: "", want: false},
		{name: "missing order id", orderID: "", paymentID: "pay_xyz", signature: valid, secret: secret, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VerifyPaymentSignature(tt.orderID, tt.paymentID, tt.signature, tt.secret)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	const secret = "webhook_secret"
	body := []byte(`{"event":"payment.captured"}`)
	valid := signHex(string(body), secret)

	assert.True(t, VerifyWebhookSignature(body, valid, secret))
	assert.False(t, VerifyWebhookSignature(body, valid, "other"))
	assert.False(t, VerifyWebhookSignature([]byte(`{"event":"tampered"}`), valid, secret))
	assert.False(t, VerifyWebhookSignature(body, "", secret))
}

func stringsToUpper(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'a' && b[i] <= 'f' {
			b[i] -= 'a' - 'A'
		}
	}
	return string(b)
}
