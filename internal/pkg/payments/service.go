package payments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/bodhiverse/bodhika/app/models"
	"github.com/bodhiverse/bodhika/internal/pkg/access"
	"github.com/bodhiverse/bodhika/internal/pkg/env"
)

var (
	// ErrSignatureMismatch is returned when a confirmation or webhook carries
	// a signature that does not verify. Nothing is mutated in that case.
	ErrSignatureMismatch = errors.New("payment signature verification failed")
	// ErrDuplicatePayment is returned when a payment id was already granted.
	ErrDuplicatePayment = errors.New("payment already processed")
	// ErrActivePlanExists is returned by the free-tier grant when the user
	// already holds an effective subscription.
	ErrActivePlanExists = errors.New("an active subscription already exists")
	// ErrUnknownPlanType is returned for plan types outside the known set.
	ErrUnknownPlanType = errors.New("unknown plan type")
	// ErrOrderMismatch is returned when a confirmation references an order
	// that belongs to a different user or a different amount.
	ErrOrderMismatch = errors.New("confirmation does not match the recorded order")
)

const webhookEventPaymentCaptured = "payment.captured"

// Service confirms gateway payments and mutates subscription state. All
// entitlement grants funnel through the payment event ledger, so duplicate
// confirmations and redelivered webhooks can never grant twice.
type Service struct {
	repo          Repository
	keySecret     string
	webhookSecret string
	now           func() time.Time
}

// NewService creates a payments service from an injected repository.
func NewService(repo Repository, keySecret, webhookSecret string) *Service {
	return &Service{
		repo:          repo,
		keySecret:     keySecret,
		webhookSecret: webhookSecret,
		now:           time.Now,
	}
}

// NewServiceFromDB creates a payments service from a GORM DB handle with
// secrets taken from the environment.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(
		NewRepository(db),
		env.GetEnv("RAZORPAY_KEY_SECRET", ""),
		env.GetEnv("RAZORPAY_WEBHOOK_SECRET", ""),
	)
}

// ConfirmPayment verifies a checkout confirmation and grants or extends the
// subscription it paid for. The signature check happens before any write; a
// tampered signature leaves the database untouched.
func (s *Service) ConfirmPayment(ctx context.Context, in ConfirmationInput) (*models.Subscription, error) {
	_ = ctx
	if in.UserID == 0 || strings.TrimSpace(in.PaymentID) == "" || strings.TrimSpace(in.OrderID) == "" {
		return nil, errors.New("user_id, razorpay_payment_id and razorpay_order_id are required")
	}
	if !models.IsValidPlanType(in.PlanType) {
		return nil, ErrUnknownPlanType
	}

	if !VerifyPaymentSignature(in.OrderID, in.PaymentID, in.Signature, s.keySecret) {
		return nil, ErrSignatureMismatch
	}

	// Cross-check against the order we created before checkout, when present.
	order, err := s.repo.GetOrderByProviderOrderID(models.PaymentProviderRazorpay, in.OrderID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if order != nil {
		if order.UserID != in.UserID {
			return nil, ErrOrderMismatch
		}
		if !in.Amount.IsZero() && !order.Amount.Equal(in.Amount) {
			return nil, ErrOrderMismatch
		}
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"razorpay_payment_id": in.PaymentID,
		"razorpay_order_id":   in.OrderID,
		"plan_type":           in.PlanType,
		"amount":              in.Amount,
	})

	sub, err := s.grantForPayment(in.UserID, in.PlanType, in.PaymentID, string(payload))
	if err != nil {
		return nil, err
	}

	if order != nil {
		if err := s.repo.MarkOrderPaid(order.ID, in.PaymentID); err != nil {
			// The entitlement is already granted; order bookkeeping failure
			// must not fail the confirmation.
			log.Printf("payments: failed to mark order %d paid: %v", order.ID, err)
		}
	}
	return sub, nil
}

// GrantFreeTier creates the four-day starter subscription on first signup.
func (s *Service) GrantFreeTier(ctx context.Context, userID uint) (*models.Subscription, error) {
	_ = ctx
	if userID == 0 {
		return nil, errors.New("user_id is required")
	}

	subs, err := s.repo.ListSubscriptionsByUser(userID)
	if err != nil {
		return nil, err
	}
	if access.Evaluate(subs, s.now()).HasActivePlan() {
		return nil, ErrActivePlanExists
	}

	return s.createSubscription(userID, models.PlanFourDay, "")
}

// ProcessWebhook persists a gateway webhook delivery idempotently, verifies
// its signature, and applies captured payments. The delivery id dedups
// redelivered webhooks; the payment ledger additionally dedups against
// checkout confirmations for the same payment.
func (s *Service) ProcessWebhook(ctx context.Context, rawBody []byte, eventID, eventType, signatureHeader string) (duplicate bool, err error) {
	_ = ctx
	signatureValid := VerifyWebhookSignature(rawBody, signatureHeader, s.webhookSecret)

	id := strings.TrimSpace(eventID)
	if id == "" {
		sum := sha256.Sum256(rawBody)
		id = "hash:" + hex.EncodeToString(sum[:])
	}

	created, stored, err := s.repo.CreatePaymentEventIfNotExists(&models.PaymentEvent{
		Provider:        models.PaymentProviderRazorpay,
		ProviderEventID: id,
		EventType:       strings.TrimSpace(eventType),
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		return false, err
	}
	if !created {
		return true, nil
	}
	if !signatureValid {
		_ = s.repo.MarkEventProcessed(stored.ID, ErrSignatureMismatch.Error())
		return false, ErrSignatureMismatch
	}
	if eventType != webhookEventPaymentCaptured {
		_ = s.repo.MarkEventProcessed(stored.ID, "")
		return false, nil
	}

	capture, err := parseCapturedPayment(rawBody)
	if err != nil {
		_ = s.repo.MarkEventProcessed(stored.ID, err.Error())
		return false, err
	}

	_, grantErr := s.grantForPayment(capture.UserID, capture.PlanType, capture.PaymentID, string(rawBody))
	if grantErr != nil && !errors.Is(grantErr, ErrDuplicatePayment) {
		_ = s.repo.MarkEventProcessed(stored.ID, grantErr.Error())
		return false, grantErr
	}
	_ = s.repo.MarkEventProcessed(stored.ID, "")
	return false, nil
}

// grantForPayment records the payment in the event ledger and, on first
// sight, creates or extends the subscription it paid for.
func (s *Service) grantForPayment(userID uint, planType, paymentID, payloadJSON string) (*models.Subscription, error) {
	created, stored, err := s.repo.CreatePaymentEventIfNotExists(&models.PaymentEvent{
		Provider:        models.PaymentProviderRazorpay,
		ProviderEventID: "payment:" + paymentID,
		EventType:       "payment.confirmed",
		PayloadJSON:     payloadJSON,
		SignatureValid:  true,
	})
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, ErrDuplicatePayment
	}

	sub, err := s.applyGrant(userID, planType, paymentID)
	if err != nil {
		_ = s.repo.MarkEventProcessed(stored.ID, err.Error())
		return nil, err
	}
	_ = s.repo.MarkEventProcessed(stored.ID, "")
	return sub, nil
}

func (s *Service) applyGrant(userID uint, planType, paymentID string) (*models.Subscription, error) {
	existing, err := s.repo.LatestActiveSubscriptionByType(userID, planType)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := s.now()
	if existing != nil {
		// Extend from whichever is later: the current window end or now.
		base := existing.EndDate
		if base.Before(now) {
			base = now
		}
		existing.EndDate = models.PlanEndDate(planType, base)
		existing.IsActive = true
		existing.PaymentID = paymentID
		if err := s.repo.SaveSubscription(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	return s.createSubscription(userID, planType, paymentID)
}

func (s *Service) createSubscription(userID uint, planType, paymentID string) (*models.Subscription, error) {
	now := s.now()
	sub := &models.Subscription{
		UserID:    userID,
		Type:      planType,
		StartDate: now,
		EndDate:   models.PlanEndDate(planType, now),
		IsActive:  true,
		PaymentID: paymentID,
	}
	if planType == models.PlanFourDay {
		day := 1
		sub.CurrentDay = &day
	}
	if err := s.repo.CreateSubscription(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// capturedPayment is the slice of a payment.captured webhook we act on.
// Plan context rides in the order notes set at order creation time.
type capturedPayment struct {
	PaymentID string
	OrderID   string
	UserID    uint
	PlanType  string
}

func parseCapturedPayment(rawBody []byte) (*capturedPayment, error) {
	var raw struct {
		Payload struct {
			Payment struct {
				Entity struct {
					ID      string            `json:"id"`
					OrderID string            `json:"order_id"`
					Notes   map[string]string `json:"notes"`
				} `json:"entity"`
			} `json:"payment"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(rawBody, &raw); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}

	entity := raw.Payload.Payment.Entity
	if entity.ID == "" {
		return nil, errors.New("webhook payload missing payment id")
	}

	userID, err := strconv.ParseUint(entity.Notes["user_id"], 10, 32)
	if err != nil || userID == 0 {
		return nil, errors.New("webhook payload missing user_id note")
	}
	planType := entity.Notes["plan_type"]
	if !models.IsValidPlanType(planType) {
		return nil, ErrUnknownPlanType
	}

	return &capturedPayment{
		PaymentID: entity.ID,
		OrderID:   entity.OrderID,
		UserID:    uint(userID),
		PlanType:  planType,
	}, nil
}
