package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bodhiverse/bodhika/app/models"
	"github.com/bodhiverse/bodhika/app/repository"
	"github.com/bodhiverse/bodhika/internal/pkg/database"
	"github.com/bodhiverse/bodhika/internal/pkg/env"
	"github.com/bodhiverse/bodhika/internal/pkg/mail"
	"github.com/bodhiverse/bodhika/internal/pkg/payments"
	"github.com/bodhiverse/bodhika/internal/pkg/usercontext"
)

// newPaymentsService builds the payments service for a request. Tests swap
// this to inject a service over stub storage.
var newPaymentsService = func() *payments.Service {
	return payments.NewServiceFromDB(database.GetDB())
}

type createOrderRequest struct {
	PlanType  string `json:"plan_type"`
	WebinarID *uint  `json:"webinar_id"`
}

// HandleCreatePaymentOrder registers a gateway order for a plan purchase or a
// paid webinar. Plan context travels in the order notes so the webhook can
// recover it without a local lookup.
func HandleCreatePaymentOrder(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body")
	}

	var (
		amount decimal.Decimal
		notes  = map[string]interface{}{
			"user_id": strconv.FormatUint(uint64(userCtx.UserID), 10),
		}
	)

	repos := repository.GetGlobalRepositories()
	switch {
	case req.WebinarID != nil:
		webinar, err := repos.Webinar.GetByID(*req.WebinarID)
		if err != nil {
			return jsonError(c, fiber.StatusNotFound, "webinar_not_found")
		}
		if !webinar.IsPaid {
			return jsonError(c, fiber.StatusBadRequest, "webinar_not_paid")
		}
		amount = webinar.FinalPrice()
		notes["webinar_id"] = strconv.FormatUint(uint64(webinar.ID), 10)
	case models.IsValidPlanType(req.PlanType):
		if req.PlanType == models.PlanFourDay {
			return jsonError(c, fiber.StatusBadRequest, "plan_not_purchasable")
		}
		amount = sixMonthPlanPrice()
		notes["plan_type"] = req.PlanType
	default:
		return jsonError(c, fiber.StatusBadRequest, "unknown_plan_type")
	}

	gateway, err := payments.NewGatewayClientFromEnv()
	if err != nil {
		log.Printf("payment gateway unavailable: %v", err)
		return jsonError(c, fiber.StatusServiceUnavailable, "gateway_unavailable")
	}

	receipt := fmt.Sprintf("bdk_%d_%d", userCtx.UserID, time.Now().Unix())
	created, err := gateway.CreateOrder(amount, "INR", receipt, notes)
	if err != nil {
		log.Printf("order create failed: %v", err)
		return jsonError(c, fiber.StatusBadGateway, "order_create_failed")
	}

	order := &models.PaymentOrder{
		UserID:          userCtx.UserID,
		Provider:        models.PaymentProviderRazorpay,
		ProviderOrderID: created.OrderID,
		Receipt:         receipt,
		PlanType:        req.PlanType,
		WebinarID:       req.WebinarID,
		Amount:          amount,
		Currency:        created.Currency,
		Status:          models.OrderStatusCreated,
	}
	if err := repos.Order.Create(order); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"order_id": created.OrderID,
		"amount":   created.Amount,
		"currency": created.Currency,
		"receipt":  created.Receipt,
		"key_id":   created.KeyID,
	})
}

type verifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
	PlanType  string `json:"plan_type"`
}

// HandleVerifyPayment confirms a checkout result. The response mirrors the
// gateway contract: {"success": true} on a verified grant, {"success": false}
// with 400 on signature mismatch.
func HandleVerifyPayment(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req verifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body")
	}

	repos := repository.GetGlobalRepositories()

	// Paid webinar orders unlock the recording for the buyer; they do not
	// create a subscription.
	order, err := repos.Order.GetByProviderOrderID(models.PaymentProviderRazorpay, req.OrderID)
	if err == nil && order.WebinarID != nil {
		return verifyWebinarPayment(c, order, req)
	}

	svc := newPaymentsService()
	sub, err := svc.ConfirmPayment(c.Context(), payments.ConfirmationInput{
		UserID:    userCtx.UserID,
		PaymentID: req.PaymentID,
		OrderID:   req.OrderID,
		Signature: req.Signature,
		PlanType:  req.PlanType,
	})
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrSignatureMismatch):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "signature_mismatch"})
		case errors.Is(err, payments.ErrDuplicatePayment):
			return jsonError(c, fiber.StatusConflict, "duplicate_payment")
		case errors.Is(err, payments.ErrUnknownPlanType):
			return jsonError(c, fiber.StatusBadRequest, "unknown_plan_type")
		case errors.Is(err, payments.ErrOrderMismatch):
			return jsonError(c, fiber.StatusBadRequest, "order_mismatch")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	sendReceiptMail(userCtx.UserID, req.PlanType, sixMonthPlanPrice().StringFixed(2), req.PaymentID)

	return c.JSON(fiber.Map{
		"success":      true,
		"subscription": sub,
	})
}

func verifyWebinarPayment(c *fiber.Ctx, order *models.PaymentOrder, req verifyPaymentRequest) error {
	userCtx := usercontext.GetUserContext(c)
	if order.UserID != userCtx.UserID {
		return jsonError(c, fiber.StatusBadRequest, "order_mismatch")
	}
	keySecret := env.GetEnv("RAZORPAY_KEY_SECRET", "")
	if !payments.VerifyPaymentSignature(req.OrderID, req.PaymentID, req.Signature, keySecret) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "signature_mismatch"})
	}

	order.Status = models.OrderStatusPaid
	order.PaymentID = req.PaymentID
	if err := repository.GetGlobalRepositories().Order.Update(order); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	sendReceiptMail(userCtx.UserID, "webinar", order.Amount.StringFixed(2), req.PaymentID)

	return c.JSON(fiber.Map{"success": true})
}

// HandleRazorpayWebhook ingests gateway webhooks. Deliveries are persisted
// before processing; redeliveries are acknowledged without reprocessing.
func HandleRazorpayWebhook(c *fiber.Ctx) error {
	rawBody := c.Body()

	var envelope struct {
		Event string `json:"event"`
	}
	_ = json.Unmarshal(rawBody, &envelope)

	svc := newPaymentsService()
	duplicate, err := svc.ProcessWebhook(
		c.Context(),
		rawBody,
		c.Get("X-Razorpay-Event-Id"),
		envelope.Event,
		c.Get("X-Razorpay-Signature"),
	)
	if err != nil {
		if errors.Is(err, payments.ErrSignatureMismatch) {
			return jsonError(c, fiber.StatusUnauthorized, "signature_mismatch")
		}
		log.Printf("webhook processing failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"duplicate": duplicate,
	})
}

// sixMonthPlanPrice reads the configured plan price in rupees.
func sixMonthPlanPrice() decimal.Decimal {
	raw := env.GetEnv("PLAN_SIX_MONTH_PRICE", "999.00")
	price, err := decimal.NewFromString(raw)
	if err != nil {
		log.Printf("invalid PLAN_SIX_MONTH_PRICE %q, using default", raw)
		return decimal.NewFromInt(999)
	}
	return price
}

func sendReceiptMail(userID uint, planName, amount, paymentID string) {
	repos := repository.GetGlobalRepositories()
	user, err := repos.User.GetByID(userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("receipt mail: user lookup failed: %v", err)
		}
		return
	}
	settings, err := models.GetOrCreateUserSettings(database.GetDB(), userID)
	if err != nil || !settings.ReceiptEmails {
		return
	}
	go func() {
		if err := mail.SendPaymentReceipt(user.Email, planName, amount, paymentID); err != nil {
			log.Printf("receipt mail to %s failed: %v", user.Email, err)
		}
	}()
}
