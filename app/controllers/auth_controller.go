package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/bodhiverse/bodhika/app/models"
	"github.com/bodhiverse/bodhika/app/repository"
	"github.com/bodhiverse/bodhika/internal/pkg/database"
	"github.com/bodhiverse/bodhika/internal/pkg/env"
	"github.com/bodhiverse/bodhika/internal/pkg/hcaptcha"
	"github.com/bodhiverse/bodhika/internal/pkg/session"
	"github.com/bodhiverse/bodhika/internal/pkg/usercontext"
	"github.com/bodhiverse/bodhika/internal/pkg/utils"
)

type registerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	CaptchaToken string `json:"hcaptcha_token"`
}

// HandleAuthRegister creates a new account. The captcha check is skipped in
// development so local signups work without a site key.
func HandleAuthRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body")
	}

	if !env.IsDev() {
		if ok, err := hcaptcha.Verify(req.CaptchaToken); !ok {
			log.Printf("captcha verification failed: %v", err)
			return jsonError(c, fiber.StatusBadRequest, "captcha_failed")
		}
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", validationDetails(err))
	}
	user.AvatarURL = utils.GetGravatarURL(user.Email, 200)
	if err := user.GenerateActivationToken(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	repo := repository.GetGlobalRepositories().User
	if _, err := repo.GetByEmail(req.Email); err == nil {
		return jsonError(c, fiber.StatusConflict, "email_taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	if err := repo.Create(user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleAuthLogin authenticates email/password and opens a session.
func HandleAuthLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body")
	}

	// notice: in production you should not inform the user
	// with detailed messages about login failures
	user, err := repository.GetGlobalRepositories().User.GetByEmail(req.Email)
	if err != nil {
		return jsonError(c, fiber.StatusUnauthorized, "login_failed")
	}
	if !models.CheckPasswordHash(req.Password, user.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "login_failed")
	}
	if user.Status != models.STATUS_ACTIVE {
		return jsonError(c, fiber.StatusForbidden, "account_inactive")
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}
	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyIsAdmin, user.Role == models.ROLE_ADMIN)
	if err := sess.Save(); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	database.GetDB().Model(user).Update("last_login_at", time.Now())

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// HandleAuthLogout destroys the current session.
func HandleAuthLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		_ = sess.Destroy()
	}
	c.Locals(usercontext.KeyFromProtected, false)
	return c.JSON(fiber.Map{"success": true})
}

// HandleGetUserAccount returns account information for the authenticated user
// (API key or session).
func HandleGetUserAccount(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	repos := repository.GetGlobalRepositories()
	account, err := repos.User.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	settings, err := models.GetOrCreateUserSettings(database.GetDB(), userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	return c.JSON(fiber.Map{
		"id":            account.ID,
		"name":          account.Name,
		"email":         account.Email,
		"status":        account.Status,
		"plan":          userCtx.Plan,
		"is_admin":      account.Role == models.ROLE_ADMIN,
		"avatar_url":    account.AvatarURL,
		"created_at":    account.CreatedAt.UTC().Format(time.RFC3339),
		"last_login_at": formatTimePtr(account.LastLoginAt),
		"preferences": fiber.Map{
			"reminder_emails": settings.ReminderEmails,
			"receipt_emails":  settings.ReceiptEmails,
		},
		"api_key": fiber.Map{
			"prefix":       settings.APIKeyPrefix,
			"active":       settings.HasActiveAPIKey(),
			"created_at":   formatTimePtr(settings.APIKeyCreatedAt),
			"last_used_at": formatTimePtr(settings.APIKeyLastUsedAt),
		},
	})
}

type settingsRequest struct {
	ReminderEmails *bool `json:"reminder_emails"`
	ReceiptEmails  *bool `json:"receipt_emails"`
}

// HandleUpdateUserSettings updates mail preferences.
func HandleUpdateUserSettings(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req settingsRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_body")
	}

	db := database.GetDB()
	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}
	if req.ReminderEmails != nil {
		settings.ReminderEmails = *req.ReminderEmails
	}
	if req.ReceiptEmails != nil {
		settings.ReceiptEmails = *req.ReceiptEmails
	}
	if err := db.Save(settings).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	return c.JSON(fiber.Map{"success": true})
}

// HandleIssueAPIKey mints a fresh API key. The raw secret is returned exactly
// once; only its hash is stored.
func HandleIssueAPIKey(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	db := database.GetDB()
	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	rawKey, err := settings.IssueAPIKey()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}
	if err := db.Save(settings).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"api_key": rawKey,
		"prefix":  settings.APIKeyPrefix,
	})
}

// HandleRevokeAPIKey invalidates the current API key.
func HandleRevokeAPIKey(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	db := database.GetDB()
	settings, err := models.GetOrCreateUserSettings(db, userCtx.UserID)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}
	settings.RevokeAPIKey()
	if err := db.Save(settings).Error; err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "internal_error")
	}

	return c.JSON(fiber.Map{"success": true})
}
