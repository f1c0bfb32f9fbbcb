package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bodhiverse/bodhika/app/models"
)

type fakeRepo struct {
	orders    []*models.PaymentOrder
	events    map[string]*models.PaymentEvent
	subs      []*models.Subscription
	nextSubID uint
	nextEvtID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{events: map[string]*models.PaymentEvent{}, nextSubID: 1, nextEvtID: 1}
}

func (f *fakeRepo) CreateOrder(order *models.PaymentOrder) error {
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeRepo) GetOrderByProviderOrderID(provider, providerOrderID string) (*models.PaymentOrder, error) {
	for _, o := range f.orders {
		if o.Provider == provider && o.ProviderOrderID == providerOrderID {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) MarkOrderPaid(id uint, paymentID string) error {
	for _, o := range f.orders {
		if o.ID == id {
			o.Status = models.OrderStatusPaid
			o.PaymentID = paymentID
		}
	}
	return nil
}

func (f *fakeRepo) MarkOrderFailed(id uint) error {
	for _, o := range f.orders {
		if o.ID == id {
			o.Status = models.OrderStatusFailed
		}
	}
	return nil
}

func (f *fakeRepo) CreatePaymentEventIfNotExists(event *models.PaymentEvent) (bool, *models.PaymentEvent, error) {
	key := event.Provider + "/" + event.ProviderEventID
	if existing, ok := f.events[key]; ok {
		return false, existing, nil
	}
	event.ID = f.nextEvtID
	f.nextEvtID++
	f.events[key] = event
	return true, event, nil
}

func (f *fakeRepo) MarkEventProcessed(id uint, processingError string) error {
	for _, e := range f.events {
		if e.ID == id {
			now := time.Now()
			e.ProcessedAt = &now
			e.ProcessingError = processingError
		}
	}
	return nil
}

func (f *fakeRepo) ListSubscriptionsByUser(userID uint) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, s := range f.subs {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeRepo) LatestActiveSubscriptionByType(userID uint, planType string) (*models.Subscription, error) {
	var best *models.Subscription
	for _, s := range f.subs {
		if s.UserID == userID && s.Type == planType && s.IsActive {
			if best == nil || s.StartDate.After(best.StartDate) {
				best = s
			}
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

func (f *fakeRepo) CreateSubscription(sub *models.Subscription) error {
	sub.ID = f.nextSubID
	f.nextSubID++
	f.subs = append(f.subs, sub)
	return nil
}

func (f *fakeRepo) SaveSubscription(sub *models.Subscription) error {
	for i, s := range f.subs {
		if s.ID == sub.ID {
			f.subs[i] = sub
		}
	}
	return nil
}

const (
	testKeySecret     = "key_secret"
	testWebhookSecret = "webhook_secret"
)

func newTestService(repo Repository, now time.Time) *Service {
	svc := NewService(repo, testKeySecret, testWebhookSecret)
	svc.now = func() time.Time { return now }
	return svc
}

func confirmation(userID uint, orderID, paymentID, planType string) ConfirmationInput {
	return ConfirmationInput{
		UserID:    userID,
		PaymentID: paymentID,
		OrderID:   orderID,
		Signature: signHex(orderID+"|"+paymentID, testKeySecret),
		PlanType:  planType,
	}
}

func TestConfirmPayment_GrantsSixMonthSubscription(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)

	sub, err := svc.ConfirmPayment(context.Background(), confirmation(42, "order_1", "pay_1", models.PlanSixMonth))
	require.NoError(t, err)
	require.NotNil(t, sub)

	assert.Equal(t, uint(42), sub.UserID)
	assert.Equal(t, models.PlanSixMonth, sub.Type)
	assert.True(t, sub.IsActive)
	assert.Equal(t, now, sub.StartDate)
	assert.Equal(t, now.AddDate(0, 6, 0), sub.EndDate)
	assert.Nil(t, sub.CurrentDay)
	assert.Equal(t, "pay_1", sub.PaymentID)
}

func TestConfirmPayment_FourDayStartsAtDayOne(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)

	sub, err := svc.ConfirmPayment(context.Background(), confirmation(7, "order_2", "pay_2", models.PlanFourDay))
	require.NoError(t, err)

	require.NotNil(t, sub.CurrentDay)
	assert.Equal(t, 1, *sub.CurrentDay)
	assert.Equal(t, now.Add(4*24*time.Hour), sub.EndDate)
}

func TestConfirmPayment_TamperedSignatureRejectedWithoutMutation(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, time.Now())

	in := confirmation(42, "order_1", "pay_1", models.PlanSixMonth)
	in.Signature = signHex("order_1|pay_other", testKeySecret)

	sub, err := svc.ConfirmPayment(context.Background(), in)
	assert.ErrorIs(t, err, ErrSignatureMismatch)
	assert.Nil(t, sub)
	assert.Empty(t, repo.subs)
	assert.Empty(t, repo.events)
}

func TestConfirmPayment_DuplicatePaymentGrantsOnce(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, time.Now())

	in := confirmation(42, "order_1", "pay_1", models.PlanSixMonth)
	_, err := svc.ConfirmPayment(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(context.Background(), in)
	assert.ErrorIs(t, err, ErrDuplicatePayment)
	assert.Len(t, repo.subs, 1)
}

func TestConfirmPayment_ExtendsExistingActivePlan(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)

	existingEnd := now.AddDate(0, 2, 0)
	repo.subs = append(repo.subs, &models.Subscription{
		ID: 1, UserID: 42, Type: models.PlanSixMonth, IsActive: true,
		StartDate: now.AddDate(0, -4, 0), EndDate: existingEnd,
	})
	repo.nextSubID = 2

	sub, err := svc.ConfirmPayment(context.Background(), confirmation(42, "order_9", "pay_9", models.PlanSixMonth))
	require.NoError(t, err)

	assert.Equal(t, uint(1), sub.ID)
	assert.Equal(t, existingEnd.AddDate(0, 6, 0), sub.EndDate)
	assert.Len(t, repo.subs, 1)
}

func TestConfirmPayment_OrderOwnershipEnforced(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, time.Now())

	repo.orders = append(repo.orders, &models.PaymentOrder{
		ID: 1, UserID: 99, Provider: models.PaymentProviderRazorpay,
		ProviderOrderID: "order_1", Amount: decimal.NewFromInt(999),
	})

	_, err := svc.ConfirmPayment(context.Background(), confirmation(42, "order_1", "pay_1", models.PlanSixMonth))
	assert.ErrorIs(t, err, ErrOrderMismatch)
	assert.Empty(t, repo.subs)
}

func TestGrantFreeTier(t *testing.T) {
	repo := newFakeRepo()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, now)

	sub, err := svc.GrantFreeTier(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFourDay, sub.Type)
	require.NotNil(t, sub.CurrentDay)
	assert.Equal(t, 1, *sub.CurrentDay)

	_, err = svc.GrantFreeTier(context.Background(), 5)
	assert.ErrorIs(t, err, ErrActivePlanExists)
}

func capturedWebhookBody(t *testing.T, userID uint, paymentID, planType string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"event": "payment.captured",
		"payload": map[string]interface{}{
			"payment": map[string]interface{}{
				"entity": map[string]interface{}{
					"id":       paymentID,
					"order_id": "order_wh",
					"notes": map[string]string{
						"user_id":   fmt.Sprintf("%d", userID),
						"plan_type": planType,
					},
				},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func TestProcessWebhook_GrantsOnCapturedPayment(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, time.Now())

	body := capturedWebhookBody(t, 42, "pay_wh", models.PlanSixMonth)
	sig := signHex(string(body), testWebhookSecret)

	dup, err := svc.ProcessWebhook(context.Background(), body, "evt_1", "payment.captured", sig)
	require.NoError(t, err)
	assert.False(t, dup)
	require.Len(t, repo.subs, 1)
	assert.Equal(t, models.PlanSixMonth, repo.subs[0].Type)
}

func TestProcessWebhook_RedeliveryIsDuplicate(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, time.Now())

	body := capturedWebhookBody(t, 42, "pay_wh", models.PlanSixMonth)
	sig := signHex(string(body), testWebhookSecret)

	_, err := svc.ProcessWebhook(context.Background(), body, "evt_1", "payment.captured", sig)
	require.NoError(t, err)

	dup, err := svc.ProcessWebhook(context.Background(), body, "evt_1", "payment.captured", sig)
	require.NoError(t, err)
	assert.True(t, dup)
	assert.Len(t, repo.subs, 1)
}

func TestProcessWebhook_InvalidSignatureGrantsNothing(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, time.Now())

	body := capturedWebhookBody(t, 42, "pay_wh", models.PlanSixMonth)

	_, err := svc.ProcessWebhook(context.Background(), body, "evt_1", "payment.captured", "deadbeef")
	assert.ErrorIs(t, err, ErrSignatureMismatch)
	assert.Empty(t, repo.subs)
}

func TestProcessWebhook_AfterCheckoutConfirmationDoesNotDoubleGrant(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, time.Now())

	_, err := svc.ConfirmPayment(context.Background(), confirmation(42, "order_wh", "pay_wh", models.PlanSixMonth))
	require.NoError(t, err)

	body := capturedWebhookBody(t, 42, "pay_wh", models.PlanSixMonth)
	sig := signHex(string(body), testWebhookSecret)

	dup, err := svc.ProcessWebhook(context.Background(), body, "evt_after", "payment.captured", sig)
	require.NoError(t, err)
	assert.False(t, dup)
	assert.Len(t, repo.subs, 1)
}

func TestProcessWebhook_IgnoresUnrelatedEvents(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, time.Now())

	body := []byte(`{"event":"refund.created"}`)
	sig := signHex(string(body), testWebhookSecret)

	dup, err := svc.ProcessWebhook(context.Background(), body, "evt_2", "refund.created", sig)
	require.NoError(t, err)
	assert.False(t, dup)
	assert.Empty(t, repo.subs)
}
