package controllers

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// jsonError writes the shared API error shape. details is optional and
// carries field-level messages for validation failures.
func jsonError(c *fiber.Ctx, status int, code string, details ...interface{}) error {
	body := fiber.Map{
		"success": false,
		"error":   code,
	}
	if len(details) > 0 && details[0] != nil {
		body["details"] = details[0]
	}
	return c.Status(status).JSON(body)
}

// validationDetails flattens validator errors into field messages.
func validationDetails(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Field()+" failed on "+fe.Tag())
	}
	return out
}

// parseIDParam reads the :id route parameter as an unsigned integer.
func parseIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// paginationParams reads offset/limit query parameters with sane bounds.
func paginationParams(c *fiber.Ctx) (offset, limit int) {
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit = c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return offset, limit
}
