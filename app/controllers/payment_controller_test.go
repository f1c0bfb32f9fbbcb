package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bodhiverse/bodhika/app/models"
	"github.com/bodhiverse/bodhika/internal/pkg/payments"
)

type stubPaymentsRepo struct {
	eventExists bool
	events      []*models.PaymentEvent
}

func (s *stubPaymentsRepo) CreateOrder(order *models.PaymentOrder) error { return nil }
func (s *stubPaymentsRepo) GetOrderByProviderOrderID(provider, providerOrderID string) (*models.PaymentOrder, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubPaymentsRepo) MarkOrderPaid(id uint, paymentID string) error { return nil }
func (s *stubPaymentsRepo) MarkOrderFailed(id uint) error                 { return nil }
func (s *stubPaymentsRepo) CreatePaymentEventIfNotExists(event *models.PaymentEvent) (bool, *models.PaymentEvent, error) {
	if s.eventExists {
		return false, event, nil
	}
	event.ID = uint(len(s.events) + 1)
	s.events = append(s.events, event)
	return true, event, nil
}
func (s *stubPaymentsRepo) MarkEventProcessed(id uint, processingError string) error { return nil }
func (s *stubPaymentsRepo) ListSubscriptionsByUser(userID uint) ([]models.Subscription, error) {
	return nil, nil
}
func (s *stubPaymentsRepo) LatestActiveSubscriptionByType(userID uint, planType string) (*models.Subscription, error) {
	return nil, gorm.ErrRecordNotFound
}
func (s *stubPaymentsRepo) CreateSubscription(sub *models.Subscription) error { return nil }
func (s *stubPaymentsRepo) SaveSubscription(sub *models.Subscription) error   { return nil }

const testWebhookSecret = "whsec_test"

func webhookTestApp(t *testing.T, repo *stubPaymentsRepo) *fiber.App {
	t.Helper()
	previous := newPaymentsService
	newPaymentsService = func() *payments.Service {
		return payments.NewService(repo, "key_secret_test", testWebhookSecret)
	}
	t.Cleanup(func() { newPaymentsService = previous })

	app := fiber.New()
	app.Post("/webhook", HandleRazorpayWebhook)
	return app
}

func signWebhookBody(body string) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

// A delivery whose signature does not verify is rejected with 401 and grants
// nothing.
func TestRazorpayWebhook_BadSignatureGets401(t *testing.T) {
	repo := &stubPaymentsRepo{}
	app := webhookTestApp(t, repo)

	body := `{"event":"payment.captured","payload":{}}`
	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(body))
	req.Header.Set("X-Razorpay-Event-Id", "evt_1")
	req.Header.Set("X-Razorpay-Signature", "deadbeef")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.False(t, out.Success)
	assert.Equal(t, "signature_mismatch", out.Error)
}

// A redelivered event id is acknowledged without reprocessing.
func TestRazorpayWebhook_DuplicateDeliveryAcknowledged(t *testing.T) {
	repo := &stubPaymentsRepo{eventExists: true}
	app := webhookTestApp(t, repo)

	body := `{"event":"payment.captured","payload":{}}`
	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(body))
	req.Header.Set("X-Razorpay-Event-Id", "evt_1")
	req.Header.Set("X-Razorpay-Signature", signWebhookBody(body))

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out struct {
		Success   bool `json:"success"`
		Duplicate bool `json:"duplicate"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, out.Success)
	assert.True(t, out.Duplicate)
}
