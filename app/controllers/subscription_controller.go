package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bodhiverse/bodhika/app/models"
	"github.com/bodhiverse/bodhika/app/repository"
	"github.com/bodhiverse/bodhika/internal/pkg/access"
	"github.com/bodhiverse/bodhika/internal/pkg/database"
	"github.com/bodhiverse/bodhika/internal/pkg/payments"
	"github.com/bodhiverse/bodhika/internal/pkg/usercontext"
)

// HandleGetSubscription evaluates and returns the caller's entitlement state.
// This is the single source of truth the frontend renders from; it never
// caches across payments because the evaluation runs on live rows.
func HandleGetSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	subs, err := repository.GetGlobalRepositories().Subscription.GetActiveByUserID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	res := access.Evaluate(subs, time.Now())
	body := fiber.Map{
		"has_active_plan":           res.HasActivePlan(),
		"plan_type":                 res.EffectiveType(),
		"is_premium_unlocked":       res.IsPremiumUnlocked,
		"should_show_four_day_plan": res.ShouldShowFourDayPlan,
	}
	if res.Effective != nil {
		body["subscription"] = res.Effective
	}
	return c.JSON(body)
}

// HandleCreateFreeSubscription grants the four-day starter plan. Returns 409
// when the user already holds an effective subscription.
func HandleCreateFreeSubscription(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	svc := payments.NewServiceFromDB(database.GetDB())
	sub, err := svc.GrantFreeTier(c.Context(), userCtx.UserID)
	if err != nil {
		if errors.Is(err, payments.ErrActivePlanExists) {
			return jsonError(c, fiber.StatusConflict, "active_plan_exists")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":      true,
		"subscription": sub,
	})
}

// HandleAdvanceSubscriptionDay bumps the day marker of an active four-day
// plan. The marker is monotonic and capped at the plan length.
func HandleAdvanceSubscriptionDay(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	repo := repository.GetGlobalRepositories().Subscription
	subs, err := repo.GetActiveByUserID(userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	res := access.Evaluate(subs, time.Now())
	if res.Effective == nil || res.Effective.Type != models.PlanFourDay {
		return jsonError(c, fiber.StatusConflict, "no_four_day_plan")
	}

	sub := res.Effective
	moved := sub.AdvanceDay()
	if moved {
		if err := repo.Update(sub); err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_error")
		}
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"moved":       moved,
		"current_day": sub.DayProgress(),
	})
}
