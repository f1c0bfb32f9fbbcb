package access

import (
	"sort"
	"time"

	"github.com/bodhiverse/bodhika/app/models"
)

// Result is the outcome of evaluating a user's subscriptions at a point in
// time. Effective is nil when the user has no active plan; that is not an
// error, callers decide how to route such users.
type Result struct {
	Effective             *models.Subscription `json:"effective_subscription"`
	IsPremiumUnlocked     bool                 `json:"is_premium_unlocked"`
	ShouldShowFourDayPlan bool                 `json:"should_show_four_day_plan"`
}

// HasActivePlan reports whether any subscription was selected as effective.
func (r Result) HasActivePlan() bool {
	return r.Effective != nil
}

// EffectiveType returns the effective plan type, or "" without a plan.
func (r Result) EffectiveType() string {
	if r.Effective == nil {
		return ""
	}
	return r.Effective.Type
}

// onboardingWindow is how long after the start of a four-day plan the
// first-time welcome view is offered (while day progress is still at day 1).
const onboardingWindow = 48 * time.Hour

// Evaluate selects the single effective subscription for a user and derives
// the unlock state. Precedence, highest first:
//
//  1. The most recently started active SIX_MONTH subscription. Premium is
//     unlocked unconditionally; the active flag is authoritative and no date
//     window is checked.
//  2. The most recently started active FOUR_DAY subscription. Premium stays
//     locked; only base content is unlocked.
//  3. Nothing: Result.Effective is nil.
//
// The input order does not matter; rows are sorted by start date descending
// before selection.
func Evaluate(subs []models.Subscription, now time.Time) Result {
	sorted := make([]models.Subscription, len(subs))
	copy(sorted, subs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartDate.After(sorted[j].StartDate)
	})

	for i := range sorted {
		if sorted[i].IsActive && sorted[i].Type == models.PlanSixMonth {
			return Result{
				Effective:         &sorted[i],
				IsPremiumUnlocked: true,
			}
		}
	}

	for i := range sorted {
		if sorted[i].IsActive && sorted[i].Type == models.PlanFourDay {
			return Result{
				Effective:             &sorted[i],
				ShouldShowFourDayPlan: shouldShowFourDayPlan(&sorted[i], now),
			}
		}
	}

	return Result{}
}

// shouldShowFourDayPlan is true exactly while the first-time welcome view of
// a four-day plan applies: day progress still at day 1 and the plan started
// within the last 48 hours.
func shouldShowFourDayPlan(sub *models.Subscription, now time.Time) bool {
	if sub.DayProgress() != 1 {
		return false
	}
	elapsed := now.Sub(sub.StartDate)
	return elapsed >= 0 && elapsed <= onboardingWindow
}
