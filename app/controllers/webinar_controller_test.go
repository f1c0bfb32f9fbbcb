package controllers

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bodhiverse/bodhika/app/models"
)

func scheduledWebinar(daysAhead int) *models.Webinar {
	day := time.Now().In(webinarLocation()).AddDate(0, 0, daysAhead)
	return &models.Webinar{
		ID:              1,
		Title:           "Evening Satsang",
		ScheduledDate:   time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
		ScheduledTime:   "18:00",
		DurationMinutes: 60,
		RecordingURL:    "https://player.example/rec/1",
	}
}

func TestWebinarView_WithholdsRecordingBeforeStart(t *testing.T) {
	w := scheduledWebinar(2)

	view := webinarView(w, time.Now(), true)
	assert.Equal(t, "not_started", view["status"])
	assert.NotContains(t, view, "recording_url")
	assert.Greater(t, view["seconds_until_start"], int64(0))
}

func TestWebinarView_RecordingNeedsGrant(t *testing.T) {
	w := scheduledWebinar(-2)

	locked := webinarView(w, time.Now(), false)
	assert.Equal(t, "ended", locked["status"])
	assert.NotContains(t, locked, "recording_url")

	granted := webinarView(w, time.Now(), true)
	assert.Equal(t, w.RecordingURL, granted["recording_url"])
	assert.Equal(t, int64(0), granted["seconds_until_start"])
}

func TestApplyWebinarFlags_DiscountLastWriteWins(t *testing.T) {
	w := &models.Webinar{PaidAmount: decimal.NewFromInt(500)}

	pct := 20
	applyWebinarFlags(w, &webinarRequest{DiscountPercentage: &pct})
	assert.True(t, w.DiscountAmount.Equal(decimal.NewFromInt(100)), "got %s", w.DiscountAmount)
	assert.True(t, w.FinalPrice().Equal(decimal.NewFromInt(400)))

	// A direct amount afterwards overrides the derived value.
	direct := decimal.NewFromInt(50)
	applyWebinarFlags(w, &webinarRequest{DiscountAmount: &direct})
	assert.True(t, w.DiscountAmount.Equal(direct))
	assert.True(t, w.FinalPrice().Equal(decimal.NewFromInt(450)))

	// Percentage again recomputes from the price snapshot.
	pct = 100
	applyWebinarFlags(w, &webinarRequest{DiscountPercentage: &pct})
	assert.True(t, w.FinalPrice().IsZero())
}

func TestApplyWebinarFlags_BothFieldsInOneRequest(t *testing.T) {
	w := &models.Webinar{PaidAmount: decimal.NewFromInt(300)}

	pct := 10
	direct := decimal.NewFromInt(99)
	applyWebinarFlags(w, &webinarRequest{DiscountPercentage: &pct, DiscountAmount: &direct})

	// The direct amount is applied after the percentage and wins.
	assert.True(t, w.DiscountAmount.Equal(direct))
	assert.Equal(t, 10, w.DiscountPercentage)
}

func TestEnvInt(t *testing.T) {
	assert.Equal(t, 30, envInt("UNSET_REMINDER_KEY", 30))

	t.Setenv("WEBINAR_REMINDER_LEAD_MINUTES", "15")
	assert.Equal(t, 15, envInt("WEBINAR_REMINDER_LEAD_MINUTES", 30))

	t.Setenv("WEBINAR_REMINDER_LEAD_MINUTES", "soon")
	assert.Equal(t, 30, envInt("WEBINAR_REMINDER_LEAD_MINUTES", 30))
}
