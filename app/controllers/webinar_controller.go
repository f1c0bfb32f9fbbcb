package controllers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bodhiverse/bodhika/app/models"
	"github.com/bodhiverse/bodhika/app/repository"
	"github.com/bodhiverse/bodhika/internal/pkg/access"
	"github.com/bodhiverse/bodhika/internal/pkg/database"
	"github.com/bodhiverse/bodhika/internal/pkg/env"
	"github.com/bodhiverse/bodhika/internal/pkg/gate"
	"github.com/bodhiverse/bodhika/internal/pkg/mail"
	"github.com/bodhiverse/bodhika/internal/pkg/usercontext"
	"github.com/bodhiverse/bodhika/internal/pkg/webinarstate"
)

// webinarScheduler drives reminder countdowns. Set once at startup; nil means
// reminders are disabled (tests, migration runs).
var webinarScheduler *webinarstate.Scheduler

// SetWebinarScheduler wires the reminder scheduler used by webinar handlers.
func SetWebinarScheduler(s *webinarstate.Scheduler) {
	webinarScheduler = s
}

func webinarLocation() *time.Location {
	name := env.GetEnv("WEBINAR_TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// webinarView is the public response shape. Lock state and pricing are
// computed server side so the frontend never decides access on its own.
func webinarView(w *models.Webinar, now time.Time, includeRecording bool) fiber.Map {
	loc := webinarLocation()
	status, err := webinarstate.StatusAt(w, now, loc)
	if err != nil {
		status = webinarstate.StatusNotStarted
	}
	seconds, _ := webinarstate.SecondsUntilStart(w, now, loc)

	view := fiber.Map{
		"id":                  w.ID,
		"webinarTitle":        w.Title,
		"description":         w.Description,
		"webinarDate":         w.ScheduledDate.Format("2006-01-02"),
		"webinarTime":         w.ScheduledTime,
		"duration_minutes":    w.DurationMinutes,
		"isPaid":              w.IsPaid,
		"paidAmount":          w.PaidAmount,
		"discountPercentage":  w.DiscountPercentage,
		"discountAmount":      w.DiscountAmount,
		"final_price":         w.FinalPrice(),
		"always_free":         w.AlwaysFree,
		"status":              string(status),
		"seconds_until_start": seconds,
	}
	// The recording URL stays server side until the countdown lock opens.
	if includeRecording && status != webinarstate.StatusNotStarted && w.RecordingURL != "" {
		view["recording_url"] = w.RecordingURL
	}
	return view
}

// HandleListWebinars returns all webinars with their computed lock state.
func HandleListWebinars(c *fiber.Ctx) error {
	offset, limit := paginationParams(c)
	webinars, err := repository.GetGlobalRepositories().Webinar.GetAll(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	now := time.Now()
	views := make([]fiber.Map, 0, len(webinars))
	for i := range webinars {
		views = append(views, webinarView(&webinars[i], now, false))
	}
	return c.JSON(fiber.Map{"webinars": views})
}

// HandleGetWebinar returns one webinar. The recording URL is included only
// when the caller passes the entitlement gate (or bought this webinar) and
// the countdown has elapsed.
func HandleGetWebinar(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id")
	}

	webinar, err := repository.GetGlobalRepositories().Webinar.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	return c.JSON(webinarView(webinar, time.Now(), callerCanViewWebinar(c, webinar)))
}

// callerCanViewWebinar runs the content gate plus the one-off purchase check.
func callerCanViewWebinar(c *fiber.Ctx, w *models.Webinar) bool {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return gate.CanAccess(gate.ForWebinar(w), access.Result{})
	}

	repos := repository.GetGlobalRepositories()
	subs, err := repos.Subscription.GetActiveByUserID(userCtx.UserID)
	if err == nil && gate.CanAccess(gate.ForWebinar(w), access.Evaluate(subs, time.Now())) {
		return true
	}

	// A paid order for exactly this webinar also unlocks it.
	var count int64
	database.GetDB().Model(&models.PaymentOrder{}).
		Where("user_id = ? AND webinar_id = ? AND status = ?", userCtx.UserID, w.ID, models.OrderStatusPaid).
		Count(&count)
	return count > 0
}

type webinarRequest struct {
	Title              string           `json:"webinarTitle"`
	Description        string           `json:"description"`
	Date               string           `json:"webinarDate"` // YYYY-MM-DD
	Time               string           `json:"webinarTime"` // HH:MM
	DurationMinutes    int              `json:"duration_minutes"`
	IsPaid             *bool            `json:"isPaid"`
	PaidAmount         *decimal.Decimal `json:"paidAmount"`
	DiscountPercentage *int             `json:"discountPercentage"`
	DiscountAmount     *decimal.Decimal `json:"discountAmount"`
	RecordingURL       *string          `json:"recording_url"`
	AlwaysFree         *bool            `json:"always_free"`
}

// HandleCreateWebinar creates a webinar and schedules its reminder.
func HandleCreateWebinar(c *fiber.Ctx) error {
	var req webinarRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body")
	}

	scheduledDate, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", []string{"webinarDate must be YYYY-MM-DD"})
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", []string{"webinarTime must be HH:MM"})
	}

	webinar := &models.Webinar{
		Title:           req.Title,
		Description:     req.Description,
		ScheduledDate:   scheduledDate,
		ScheduledTime:   req.Time,
		DurationMinutes: req.DurationMinutes,
	}
	applyWebinarFlags(webinar, &req)
	if err := validate.Struct(webinar); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", validationDetails(err))
	}

	if err := repository.GetGlobalRepositories().Webinar.Create(webinar); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}
	ScheduleWebinarReminder(webinar)

	return c.Status(fiber.StatusCreated).JSON(webinarView(webinar, time.Now(), true))
}

// HandleUpdateWebinar edits a webinar. Editing the start time replaces the
// pending reminder countdown.
func HandleUpdateWebinar(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id")
	}

	repo := repository.GetGlobalRepositories().Webinar
	webinar, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	var req webinarRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body")
	}

	if req.Title != "" {
		webinar.Title = req.Title
	}
	if req.Description != "" {
		webinar.Description = req.Description
	}
	if req.Date != "" {
		scheduledDate, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "validation_failed", []string{"webinarDate must be YYYY-MM-DD"})
		}
		webinar.ScheduledDate = scheduledDate
	}
	if req.Time != "" {
		if _, err := time.Parse("15:04", req.Time); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "validation_failed", []string{"webinarTime must be HH:MM"})
		}
		webinar.ScheduledTime = req.Time
	}
	if req.DurationMinutes > 0 {
		webinar.DurationMinutes = req.DurationMinutes
	}
	applyWebinarFlags(webinar, &req)
	if err := validate.Struct(webinar); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", validationDetails(err))
	}

	if err := repo.Update(webinar); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}
	ScheduleWebinarReminder(webinar)

	return c.JSON(webinarView(webinar, time.Now(), true))
}

// applyWebinarFlags applies optional fields. Discount fields are last write
// wins: a percentage recomputes the amount from the price snapshot, a direct
// amount overrides whatever the percentage derived.
func applyWebinarFlags(w *models.Webinar, req *webinarRequest) {
	if req.IsPaid != nil {
		w.IsPaid = *req.IsPaid
	}
	if req.PaidAmount != nil {
		w.PaidAmount = *req.PaidAmount
	}
	if req.DiscountPercentage != nil {
		w.ApplyDiscountPercentage(*req.DiscountPercentage)
	}
	if req.DiscountAmount != nil {
		w.SetDiscountAmount(*req.DiscountAmount)
	}
	if req.RecordingURL != nil {
		w.RecordingURL = *req.RecordingURL
	}
	if req.AlwaysFree != nil {
		w.AlwaysFree = *req.AlwaysFree
	}
}

// HandleDeleteWebinar removes a webinar and cancels its pending reminder.
func HandleDeleteWebinar(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id")
	}

	if err := repository.GetGlobalRepositories().Webinar.Delete(id); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}
	if webinarScheduler != nil {
		webinarScheduler.Cancel(id)
	}

	return c.JSON(fiber.Map{"success": true})
}

// ScheduleWebinarReminder arms (or rearms) the reminder countdown for a
// webinar. The reminder fires a configurable lead time before start.
func ScheduleWebinarReminder(w *models.Webinar) {
	if webinarScheduler == nil {
		return
	}
	start, err := w.StartAt(webinarLocation())
	if err != nil {
		log.Printf("webinar %d has unparseable start, reminder skipped: %v", w.ID, err)
		return
	}

	lead := time.Duration(envInt("WEBINAR_REMINDER_LEAD_MINUTES", 30)) * time.Minute
	fireAt := start.Add(-lead)
	if fireAt.Before(time.Now()) {
		return
	}

	id := w.ID
	title := w.Title
	startsAt := start.Format("Mon, 02 Jan 2006 15:04 MST")
	webinarScheduler.Schedule(id, fireAt, func() {
		sendWebinarReminders(title, startsAt)
	})
}

// sendWebinarReminders mails every user who opted into reminders.
func sendWebinarReminders(title, startsAt string) {
	db := database.GetDB()
	if db == nil {
		return
	}

	var recipients []string
	err := db.Model(&models.User{}).
		Joins("JOIN user_settings ON user_settings.user_id = users.id").
		Where("users.status = ? AND user_settings.reminder_emails = ?", models.STATUS_ACTIVE, true).
		Pluck("users.email", &recipients).Error
	if err != nil {
		log.Printf("reminder recipient query failed: %v", err)
		return
	}

	for _, email := range recipients {
		if err := mail.SendWebinarReminder(email, title, startsAt); err != nil {
			log.Printf("reminder to %s failed: %v", email, err)
		}
	}
}

func envInt(key string, fallback int) int {
	raw := env.GetEnv(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
