package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Webinar is a scheduled live session with an optional paid recording.
// Date and time-of-day are stored separately because admins edit them
// independently; StartAt combines them.
type Webinar struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	Title              string          `gorm:"type:varchar(255);not null" json:"webinarTitle" validate:"required,min=3,max=255"`
	Description        string          `gorm:"type:text" json:"description"`
	ScheduledDate      time.Time       `gorm:"type:date;not null" json:"webinarDate"`
	ScheduledTime      string          `gorm:"type:varchar(5);not null" json:"webinarTime" validate:"required"`
	DurationMinutes    int             `gorm:"default:60" json:"duration_minutes"`
	IsPaid             bool            `gorm:"default:false" json:"isPaid"`
	PaidAmount         decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"paidAmount"`
	DiscountPercentage int             `gorm:"default:0" json:"discountPercentage" validate:"min=0,max=100"`
	DiscountAmount     decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"discountAmount"`
	RecordingURL       string          `gorm:"type:varchar(512);default:''" json:"-"`
	AlwaysFree         bool            `gorm:"default:false" json:"always_free"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`
}

// StartAt combines the scheduled date and time-of-day in the given location.
func (w *Webinar) StartAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.Parse("15:04", w.ScheduledTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid webinar time %q: %w", w.ScheduledTime, err)
	}
	d := w.ScheduledDate
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// EndAt is StartAt plus the scheduled duration.
func (w *Webinar) EndAt(loc *time.Location) (time.Time, error) {
	start, err := w.StartAt(loc)
	if err != nil {
		return time.Time{}, err
	}
	minutes := w.DurationMinutes
	if minutes <= 0 {
		minutes = 60
	}
	return start.Add(time.Duration(minutes) * time.Minute), nil
}

// FinalPrice is the charged amount after discount, floored at zero.
func (w *Webinar) FinalPrice() decimal.Decimal {
	price := w.PaidAmount.Sub(w.DiscountAmount)
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

// ApplyDiscountPercentage stores the percentage and recomputes the amount
// from the current price snapshot. A later direct amount write overrides the
// derived value; the two fields are not kept in sync after that.
func (w *Webinar) ApplyDiscountPercentage(percentage int) {
	w.DiscountPercentage = percentage
	w.DiscountAmount = w.PaidAmount.
		Mul(decimal.NewFromInt(int64(percentage))).
		Div(decimal.NewFromInt(100)).
		Round(2)
}

// SetDiscountAmount overrides the discount with a directly entered amount.
func (w *Webinar) SetDiscountAmount(amount decimal.Decimal) {
	w.DiscountAmount = amount
}
