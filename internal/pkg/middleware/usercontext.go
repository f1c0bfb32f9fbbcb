package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bodhiverse/bodhika/app/repository"
	"github.com/bodhiverse/bodhika/internal/pkg/access"
	"github.com/bodhiverse/bodhika/internal/pkg/session"
	"github.com/bodhiverse/bodhika/internal/pkg/usercontext"
)

// UserContextMiddleware sets up the complete user context for every request.
// This centralizes user session handling and eliminates code duplication.
func UserContextMiddleware(c *fiber.Ctx) error {
	// Avoid interfering with Goth/Fiber session handling on OAuth routes.
	// Goth uses its own fiber session store and relies on per-request locals.
	// We skip our app session on /auth/* to prevent cross-store collisions.
	if strings.HasPrefix(c.Path(), "/auth/") {
		return c.Next()
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		setAnonymous(c)
		return c.Next()
	}

	userID := sess.Get(usercontext.KeyUserID)
	if userID == nil {
		setAnonymous(c)
		return c.Next()
	}

	uid, ok := userID.(uint)
	if !ok {
		setAnonymous(c)
		return c.Next()
	}

	username := session.GetSessionValue(c, usercontext.KeyUsername)
	isAdmin := sess.Get(usercontext.KeyIsAdmin)

	// Plan is evaluated fresh on every request so a payment confirmed a
	// moment ago unlocks content without re-login.
	plan := ""
	if subs, err := repository.GetGlobalRepositories().Subscription.GetActiveByUserID(uid); err == nil {
		plan = access.Evaluate(subs, time.Now()).EffectiveType()
	}

	userCtx := usercontext.UserContext{
		UserID:     uid,
		Username:   username,
		IsLoggedIn: true,
		IsAdmin:    isAdmin != nil && isAdmin == true,
		Plan:       plan,
	}
	c.Locals("USER_CONTEXT", userCtx)
	c.Locals(usercontext.KeyFromProtected, true)
	c.Locals(usercontext.KeyUserID, uid)
	c.Locals(usercontext.KeyUsername, username)
	c.Locals(usercontext.KeyIsAdmin, userCtx.IsAdmin)

	return c.Next()
}

func setAnonymous(c *fiber.Ctx) {
	c.Locals("USER_CONTEXT", usercontext.UserContext{
		IsLoggedIn: false,
		IsAdmin:    false,
	})
	c.Locals(usercontext.KeyFromProtected, false)
	c.Locals(usercontext.KeyIsAdmin, false)
}
