package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bodhiverse/bodhika/internal/pkg/usercontext"
)

// RequireAuth ensures a logged-in session and returns JSON 401 otherwise.
func RequireAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "unauthorized",
		})
	}
	return c.Next()
}

// RequireAdmin ensures a logged-in admin.
//
// There is deliberately no route-level premium middleware: content items
// carry per-row always-free flags, so the entitlement gate runs inside the
// content handlers where the item is known (gate.CanAccess). Handlers answer
// 403 no_active_plan when the gate fails.
func RequireAdmin(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "unauthorized",
		})
	}
	if !usercontext.IsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"success": false,
			"error":   "admin_required",
		})
	}
	return c.Next()
}
