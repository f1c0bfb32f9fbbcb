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
)

func TestJsonErrorShape(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return jsonError(c, fiber.StatusBadRequest, "validation_failed", []string{"title failed on required"})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body struct {
		Success bool     `json:"success"`
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.False(t, body.Success)
	assert.Equal(t, "validation_failed", body.Error)
	assert.Equal(t, []string{"title failed on required"}, body.Details)
}

func TestParseIDParam(t *testing.T) {
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return c.SendStatus(fiber.StatusBadRequest)
		}
		return c.JSON(fiber.Map{"id": id})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/items/42", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/items/abc", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPaginationParams(t *testing.T) {
	app := fiber.New()
	var gotOffset, gotLimit int
	app.Get("/list", func(c *fiber.Ctx) error {
		gotOffset, gotLimit = paginationParams(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/list?offset=10&limit=25", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 10, gotOffset)
	assert.Equal(t, 25, gotLimit)

	_, err = app.Test(httptest.NewRequest("GET", "/list?offset=-5&limit=9999", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 0, gotOffset)
	assert.Equal(t, 50, gotLimit)
}

func TestFormatTimePtr(t *testing.T) {
	assert.Nil(t, formatTimePtr(nil))

	now := time.Date(2025, 5, 1, 12, 34, 56, 0, time.Local)
	formatted := formatTimePtr(&now)
	assert.Equal(t, now.UTC().Format(time.RFC3339), formatted)
}
