package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/bodhiverse/bodhika/app/models"
	"github.com/bodhiverse/bodhika/app/repository"
	"github.com/bodhiverse/bodhika/internal/pkg/statistics"
)

// HandleAdminListUsers lists or searches users.
func HandleAdminListUsers(c *fiber.Ctx) error {
	repo := repository.GetGlobalRepositories().User

	if query := c.Query("q"); query != "" {
		users, err := repo.Search(query)
		if err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_error")
		}
		return c.JSON(fiber.Map{"users": users})
	}

	offset, limit := paginationParams(c)
	users, err := repo.List(offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}
	total, err := repo.Count()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	return c.JSON(fiber.Map{
		"users": users,
		"total": total,
	})
}

// HandleAdminGetUserSubscriptions lists all subscription rows of one user,
// including expired and revoked ones.
func HandleAdminGetUserSubscriptions(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id")
	}

	subs, err := repository.GetGlobalRepositories().Subscription.GetByUserID(id)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}
	return c.JSON(fiber.Map{"subscriptions": subs})
}

// HandleAdminRevokeSubscription flips the active flag on a subscription.
// The row stays for audit; revocation is reversible only by a new grant.
func HandleAdminRevokeSubscription(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id")
	}

	repo := repository.GetGlobalRepositories().Subscription
	if _, err := repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}
	if err := repo.Deactivate(id); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	return c.JSON(fiber.Map{"success": true})
}

// HandleAdminDisableUser sets a user's status to disabled.
func HandleAdminDisableUser(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_id")
	}

	repo := repository.GetGlobalRepositories().User
	user, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	user.Status = models.STATUS_DISABLED
	if err := repo.Update(user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}
	return c.JSON(fiber.Map{"success": true})
}

// HandleAdminStats returns the cached platform statistics snapshot.
func HandleAdminStats(c *fiber.Ctx) error {
	return c.JSON(statistics.GetStatistics())
}
