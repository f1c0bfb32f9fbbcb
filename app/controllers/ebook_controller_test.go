package controllers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodhiverse/bodhika/app/models"
	"github.com/bodhiverse/bodhika/app/repository"
	"github.com/bodhiverse/bodhika/internal/pkg/usercontext"
)

type stubEBookRepo struct {
	ebook *models.EBook
}

func (s *stubEBookRepo) Create(ebook *models.EBook) error { return nil }
func (s *stubEBookRepo) GetByID(id uint) (*models.EBook, error) {
	return s.ebook, nil
}
func (s *stubEBookRepo) GetActive(offset, limit int) ([]models.EBook, error) { return nil, nil }
func (s *stubEBookRepo) GetAll(offset, limit int) ([]models.EBook, error)    { return nil, nil }
func (s *stubEBookRepo) Update(ebook *models.EBook) error                    { return nil }
func (s *stubEBookRepo) Delete(id uint) error                                { return nil }
func (s *stubEBookRepo) Count() (int64, error)                               { return 0, nil }
func (s *stubEBookRepo) AddDownloads(id uint, n int64) error                 { return nil }

type stubSubscriptionRepo struct {
	subs []models.Subscription
}

func (s *stubSubscriptionRepo) Create(sub *models.Subscription) error          { return nil }
func (s *stubSubscriptionRepo) GetByID(id uint) (*models.Subscription, error)  { return nil, nil }
func (s *stubSubscriptionRepo) GetByUserID(uid uint) ([]models.Subscription, error) {
	return s.subs, nil
}
func (s *stubSubscriptionRepo) GetActiveByUserID(uid uint) ([]models.Subscription, error) {
	return s.subs, nil
}
func (s *stubSubscriptionRepo) Update(sub *models.Subscription) error { return nil }
func (s *stubSubscriptionRepo) Deactivate(id uint) error              { return nil }
func (s *stubSubscriptionRepo) DeactivateExpired(now time.Time) (int64, error) {
	return 0, nil
}
func (s *stubSubscriptionRepo) CountActiveByType(planType string) (int64, error) {
	return 0, nil
}

func downloadTestApp(ebook *models.EBook, subs []models.Subscription) *fiber.App {
	repository.SetGlobalFactory(repository.NewFactoryWithRepositories(&repository.Repositories{
		EBook:        &stubEBookRepo{ebook: ebook},
		Subscription: &stubSubscriptionRepo{subs: subs},
	}))

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("USER_CONTEXT", usercontext.UserContext{UserID: 7, IsLoggedIn: true})
		return c.Next()
	})
	app.Get("/ebooks/:id/download", HandleDownloadEBook)
	return app
}

// A premium-marked ebook must not be downloadable on the four-day plan; the
// gate runs in the handler and answers 403 no_active_plan.
func TestDownloadEBook_FourDayPlanBlockedFromPremium(t *testing.T) {
	day := 1
	premiumBook := &models.EBook{ID: 3, Title: "Inner Silence", ObjectKey: "ebooks/2026/08/x.pdf", FileType: "pdf", IsActive: true, AlwaysFree: false}
	fourDay := []models.Subscription{{
		UserID:     7,
		Type:       models.PlanFourDay,
		StartDate:  time.Now().Add(-time.Hour),
		EndDate:    time.Now().Add(72 * time.Hour),
		IsActive:   true,
		CurrentDay: &day,
	}}

	app := downloadTestApp(premiumBook, fourDay)
	resp, err := app.Test(httptest.NewRequest("GET", "/ebooks/3/download", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.False(t, body.Success)
	assert.Equal(t, "no_active_plan", body.Error)
}

// Always-free titles pass the gate even with no plan at all; the request then
// proceeds to storage (unavailable in tests, hence 503 rather than 403).
func TestDownloadEBook_AlwaysFreePassesGate(t *testing.T) {
	freeBook := &models.EBook{ID: 4, Title: "Daily Verses", ObjectKey: "ebooks/2026/08/y.pdf", FileType: "pdf", IsActive: true, AlwaysFree: true}

	app := downloadTestApp(freeBook, nil)
	resp, err := app.Test(httptest.NewRequest("GET", "/ebooks/4/download", nil), -1)
	require.NoError(t, err)
	assert.NotEqual(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
