package webinarstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodhiverse/bodhika/app/models"
)

func testWebinar() *models.Webinar {
	return &models.Webinar{
		Title:           "Morning Satsang",
		ScheduledDate:   time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
		ScheduledTime:   "18:30",
		DurationMinutes: 90,
	}
}

func TestStatusAt(t *testing.T) {
	w := testWebinar()
	start := time.Date(2025, 7, 15, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want Status
	}{
		{name: "one hour before", now: start.Add(-time.Hour), want: StatusNotStarted},
		{name: "one second before", now: start.Add(-time.Second), want: StatusNotStarted},
		{name: "at start", now: start, want: StatusInProgress},
		{name: "mid session", now: start.Add(45 * time.Minute), want: StatusInProgress},
		{name: "after end", now: start.Add(91 * time.Minute), want: StatusEnded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StatusAt(w, tt.now, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusAt_InvalidTime(t *testing.T) {
	w := testWebinar()
	w.ScheduledTime = "half past six"

	_, err := StatusAt(w, time.Now(), time.UTC)
	assert.Error(t, err)
}

func TestSecondsUntilStart(t *testing.T) {
	w := testWebinar()
	start := time.Date(2025, 7, 15, 18, 30, 0, 0, time.UTC)

	secs, err := SecondsUntilStart(w, start.Add(-90*time.Second), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, int64(90), secs)

	secs, err = SecondsUntilStart(w, start.Add(time.Minute), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, int64(0), secs)
}
