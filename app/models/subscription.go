package models

import (
	"time"
)

// Subscription plan types. The set is extensible; precedence between types is
// decided by the access evaluator, not here.
const (
	PlanFourDay  = "FOUR_DAY"
	PlanSixMonth = "SIX_MONTH"
)

// Plan durations used when a payment grants or extends a subscription.
const (
	FourDayPlanDuration = 4 * 24 * time.Hour
	SixMonthPlanMonths  = 6
	FourDayMaxDay       = 4
)

// Subscription is one entitlement window for a user. Rows are never hard
// deleted; revocation flips IsActive, which is independent of the date window.
type Subscription struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Type       string    `gorm:"type:varchar(20);not null;index" json:"type" validate:"oneof=FOUR_DAY SIX_MONTH"`
	StartDate  time.Time `gorm:"type:timestamp;not null;index" json:"start_date"`
	EndDate    time.Time `gorm:"type:timestamp;not null" json:"end_date"`
	IsActive   bool      `gorm:"default:true;index" json:"is_active"`
	CurrentDay *int      `gorm:"default:null" json:"current_day,omitempty"`
	PaymentID  string    `gorm:"type:varchar(191);default:''" json:"-"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsValidPlanType reports whether t is a known subscription type.
func IsValidPlanType(t string) bool {
	switch t {
	case PlanFourDay, PlanSixMonth:
		return true
	default:
		return false
	}
}

// PlanEndDate computes the end of a plan window that starts at start.
func PlanEndDate(planType string, start time.Time) time.Time {
	switch planType {
	case PlanSixMonth:
		return start.AddDate(0, SixMonthPlanMonths, 0)
	default:
		return start.Add(FourDayPlanDuration)
	}
}

// DayProgress returns the current day marker, defaulting to 0 when unset.
func (s *Subscription) DayProgress() int {
	if s.CurrentDay == nil {
		return 0
	}
	return *s.CurrentDay
}

// AdvanceDay bumps the day marker for day-gated plans, capped at the plan
// length. It reports whether the marker actually moved.
func (s *Subscription) AdvanceDay() bool {
	if s.Type != PlanFourDay {
		return false
	}
	day := s.DayProgress()
	if day >= FourDayMaxDay {
		return false
	}
	day++
	s.CurrentDay = &day
	return true
}
