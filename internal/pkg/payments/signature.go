package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifyPaymentSignature checks the signature Razorpay attaches to a checkout
// confirmation: hex-encoded HMAC-SHA256 of "<order_id>|<payment_id>" keyed
// with the API key secret. Verification must pass before any subscription
// mutation is committed.
func VerifyPaymentSignature(orderID, paymentID, signatureHeader, keySecret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(keySecret)
	if sig == "" || secret == "" || orderID == "" || paymentID == "" {
		return false
	}

	decodedSig, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	payload := orderID + "|" + paymentID
	return verifyHMAC([]byte(payload), decodedSig, []byte(secret))
}

// VerifyWebhookSignature checks the X-Razorpay-Signature header: hex-encoded
// HMAC-SHA256 of the raw request body keyed with the webhook secret.
func VerifyWebhookSignature(payload []byte, signatureHeader, webhookSecret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if sig == "" || secret == "" {
		return false
	}

	decodedSig, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	return verifyHMAC(payload, decodedSig, []byte(secret))
}

func verifyHMAC(payload, expectedSig, secret []byte) bool {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), expectedSig)
}
