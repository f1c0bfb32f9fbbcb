package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodhiverse/bodhika/app/models"
)

func day1() *int {
	d := 1
	return &d
}

func TestEvaluate_SixMonthAlwaysUnlocksPremium(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		subs []models.Subscription
	}{
		{
			name: "single six month",
			subs: []models.Subscription{
				{ID: 1, Type: models.PlanSixMonth, IsActive: true, StartDate: now.AddDate(0, -1, 0)},
			},
		},
		{
			name: "six month alongside newer four day",
			subs: []models.Subscription{
				{ID: 1, Type: models.PlanFourDay, IsActive: true, StartDate: now.Add(-time.Hour), CurrentDay: day1()},
				{ID: 2, Type: models.PlanSixMonth, IsActive: true, StartDate: now.AddDate(0, -3, 0)},
			},
		},
		{
			name: "six month with expired date window still active flag",
			subs: []models.Subscription{
				{ID: 1, Type: models.PlanSixMonth, IsActive: true, StartDate: now.AddDate(-1, 0, 0), EndDate: now.AddDate(0, -6, 0)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(tt.subs, now)
			require.NotNil(t, res.Effective)
			assert.Equal(t, models.PlanSixMonth, res.Effective.Type)
			assert.True(t, res.IsPremiumUnlocked)
			assert.False(t, res.ShouldShowFourDayPlan)
		})
	}
}

func TestEvaluate_PrefersMostRecentlyStarted(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	subs := []models.Subscription{
		{ID: 1, Type: models.PlanSixMonth, IsActive: true, StartDate: now.AddDate(0, -5, 0)},
		{ID: 2, Type: models.PlanSixMonth, IsActive: true, StartDate: now.AddDate(0, -1, 0)},
	}

	res := Evaluate(subs, now)
	require.NotNil(t, res.Effective)
	assert.Equal(t, uint(2), res.Effective.ID)
}

func TestEvaluate_FourDayLocksPremium(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	subs := []models.Subscription{
		{ID: 7, Type: models.PlanFourDay, IsActive: true, StartDate: now.Add(-time.Hour), CurrentDay: day1()},
	}

	res := Evaluate(subs, now)
	require.NotNil(t, res.Effective)
	assert.Equal(t, models.PlanFourDay, res.Effective.Type)
	assert.False(t, res.IsPremiumUnlocked)
	assert.True(t, res.ShouldShowFourDayPlan)
}

func TestEvaluate_OnboardingWindowBoundary(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		elapsed    time.Duration
		currentDay *int
		want       bool
	}{
		{name: "47h59m day 1", elapsed: 47*time.Hour + 59*time.Minute, currentDay: day1(), want: true},
		{name: "48h01m day 1", elapsed: 48*time.Hour + 1*time.Minute, currentDay: day1(), want: false},
		{name: "1h day 2", elapsed: time.Hour, currentDay: intPtr(2), want: false},
		{name: "1h no day marker", elapsed: time.Hour, currentDay: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := []models.Subscription{
				{Type: models.PlanFourDay, IsActive: true, StartDate: now.Add(-tt.elapsed), CurrentDay: tt.currentDay},
			}
			res := Evaluate(subs, now)
			require.NotNil(t, res.Effective)
			assert.Equal(t, tt.want, res.ShouldShowFourDayPlan)
		})
	}
}

func TestEvaluate_NoEffectivePlan(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		subs []models.Subscription
	}{
		{name: "empty set", subs: nil},
		{
			name: "all inactive",
			subs: []models.Subscription{
				{Type: models.PlanSixMonth, IsActive: false, StartDate: now.AddDate(0, -1, 0)},
				{Type: models.PlanFourDay, IsActive: false, StartDate: now.Add(-time.Hour)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(tt.subs, now)
			assert.Nil(t, res.Effective)
			assert.False(t, res.HasActivePlan())
			assert.False(t, res.IsPremiumUnlocked)
			assert.False(t, res.ShouldShowFourDayPlan)
			assert.Equal(t, "", res.EffectiveType())
		})
	}
}

func TestEvaluate_DoesNotMutateInput(t *testing.T) {
	now := time.Now()
	subs := []models.Subscription{
		{ID: 1, Type: models.PlanFourDay, IsActive: true, StartDate: now.Add(-2 * time.Hour)},
		{ID: 2, Type: models.PlanSixMonth, IsActive: true, StartDate: now.Add(-1 * time.Hour)},
	}

	Evaluate(subs, now)
	assert.Equal(t, uint(1), subs[0].ID)
	assert.Equal(t, uint(2), subs[1].ID)
}

func intPtr(v int) *int {
	return &v
}
