// Package webinarstate computes the lock state of a scheduled webinar and
// provides a cancellable countdown that fires exactly once at the unlock
// instant.
package webinarstate

import (
	"time"

	"github.com/bodhiverse/bodhika/app/models"
)

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusEnded      Status = "ended"
)

// StatusAt computes the lock state of a webinar at the given instant. While
// NotStarted the viewing page stays behind the countdown lock; the player
// unlocks on the transition to InProgress.
func StatusAt(w *models.Webinar, now time.Time, loc *time.Location) (Status, error) {
	start, err := w.StartAt(loc)
	if err != nil {
		return "", err
	}
	if now.Before(start) {
		return StatusNotStarted, nil
	}
	end, err := w.EndAt(loc)
	if err != nil {
		return "", err
	}
	if now.Before(end) {
		return StatusInProgress, nil
	}
	return StatusEnded, nil
}

// SecondsUntilStart is the whole seconds remaining on the countdown lock,
// zero once the webinar has started.
func SecondsUntilStart(w *models.Webinar, now time.Time, loc *time.Location) (int64, error) {
	start, err := w.StartAt(loc)
	if err != nil {
		return 0, err
	}
	remaining := start.Sub(now)
	if remaining <= 0 {
		return 0, nil
	}
	return int64(remaining / time.Second), nil
}
