package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/bodhiverse/bodhika/app/models"
	"github.com/bodhiverse/bodhika/internal/pkg/database"
	"github.com/bodhiverse/bodhika/internal/pkg/session"
	"github.com/bodhiverse/bodhika/internal/pkg/usercontext"
)

// HandleOAuthBegin starts the provider flow.
func HandleOAuthBegin(c *fiber.Ctx) error {
	return gothfiber.BeginAuthHandler(c)
}

// HandleOAuthCallback completes the provider flow and logs the user in
func HandleOAuthCallback(c *fiber.Ctx) error {
	// Complete OAuth with provider and obtain unified user
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "oauth_failed", err.Error())
	}

	db := database.GetDB()

	// Try to find existing provider account
	var pa models.ProviderAccount
	res := db.Where("provider = ? AND provider_user_id = ?", u.Provider, u.UserID).First(&pa)

	var appUser models.User
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		// Optional email match if provided
		if u.Email != "" {
			_ = db.Where("email = ?", u.Email).First(&appUser).Error
		}
		if appUser.ID == 0 {
			// Create new user; password is a random placeholder since the
			// model requires one (never used for login)
			placeholder := fmt.Sprintf("oauth_%d", time.Now().UnixNano())
			hash, _ := models.HashPassword(placeholder)
			email := u.Email
			if email == "" {
				// Ensure unique, non-empty email to satisfy unique index semantics in MySQL
				email = fmt.Sprintf("%s_%s@%s.oauth.local", u.Provider, u.UserID, u.Provider)
			}
			appUser = models.User{
				Name:      firstNonEmpty(u.Name, u.NickName, u.Email, "User"),
				Email:     email,
				Password:  hash,
				AvatarURL: u.AvatarURL,
				Status:    models.STATUS_ACTIVE,
			}
			if err := db.Create(&appUser).Error; err != nil {
				return jsonError(c, fiber.StatusInternalServerError, "internal_error")
			}
		}
		var exp *time.Time
		if !u.ExpiresAt.IsZero() {
			t := u.ExpiresAt
			exp = &t
		}
		pa = models.ProviderAccount{
			UserID:         appUser.ID,
			Provider:       u.Provider,
			ProviderUserID: u.UserID,
			AccessToken:    u.AccessToken,
			RefreshToken:   u.RefreshToken,
			ExpiresAt:      exp,
		}
		if err := db.Create(&pa).Error; err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_error")
		}
	} else if res.Error == nil {
		// Update tokens
		pa.AccessToken = u.AccessToken
		pa.RefreshToken = u.RefreshToken
		if !u.ExpiresAt.IsZero() {
			t := u.ExpiresAt
			pa.ExpiresAt = &t
		} else {
			pa.ExpiresAt = nil
		}
		if err := db.Save(&pa).Error; err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_error")
		}
		// Load related user
		if err := db.First(&appUser, pa.UserID).Error; err != nil {
			return jsonError(c, fiber.StatusInternalServerError, "internal_error")
		}
	} else {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	// Create app session
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}
	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, appUser.ID)
	sess.Set(usercontext.KeyUsername, appUser.Name)
	sess.Set(usercontext.KeyIsAdmin, appUser.Role == models.ROLE_ADMIN)
	if err := sess.Save(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	// Update last login timestamp
	_ = db.Model(&appUser).UpdateColumn("last_login_at", time.Now()).Error

	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleOAuthLogout clears the provider session and the app session.
func HandleOAuthLogout(c *fiber.Ctx) error {
	_ = gothfiber.Logout(c)
	if sess, err := session.GetSessionStore().Get(c); err == nil {
		_ = sess.Destroy()
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
