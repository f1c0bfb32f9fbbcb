package router

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routeIndex(routes []fiber.Route, method, path string) int {
	for i, r := range routes {
		if r.Method == method && r.Path == path {
			return i
		}
	}
	return -1
}

// The static logout route has to be registered before the :provider routes,
// otherwise fiber matches GET /auth/logout against /auth/:provider and runs
// the begin-auth handler for a provider named "logout".
func TestAuthRoutes_LogoutPrecedesProviderRoute(t *testing.T) {
	app := fiber.New()
	HttpRouter{}.registerAuthRoutes(app)

	routes := app.GetRoutes()
	logout := routeIndex(routes, fiber.MethodGet, "/auth/logout")
	provider := routeIndex(routes, fiber.MethodGet, "/auth/:provider")
	require.NotEqual(t, -1, logout)
	require.NotEqual(t, -1, provider)
	assert.Less(t, logout, provider)
}

// The API surface is a published contract; paths and verbs must match the
// documented interface (singular /webinar, PUT for updates).
func TestApiRouter_ServesDocumentedPathsAndVerbs(t *testing.T) {
	app := fiber.New()
	NewApiRouter().InstallRouter(app)

	routes := app.GetRoutes()
	for _, want := range []struct {
		method string
		path   string
	}{
		{fiber.MethodGet, "/api/subscription"},
		{fiber.MethodPost, "/api/subscription/free"},
		{fiber.MethodPost, "/api/subscription/progress"},
		{fiber.MethodPost, "/api/razorpay/payments"},
		{fiber.MethodPost, "/api/razorpay/payments/verify"},
		{fiber.MethodPost, "/api/razorpay/webhook"},
		{fiber.MethodGet, "/api/webinar"},
		{fiber.MethodPost, "/api/webinar"},
		{fiber.MethodGet, "/api/webinar/:id"},
		{fiber.MethodPut, "/api/webinar/:id"},
		{fiber.MethodDelete, "/api/webinar/:id"},
		{fiber.MethodGet, "/api/ebooks"},
		{fiber.MethodPost, "/api/ebooks"},
		{fiber.MethodPut, "/api/ebooks/:id"},
		{fiber.MethodDelete, "/api/ebooks/:id"},
		{fiber.MethodGet, "/api/ebooks/:id/download"},
		{fiber.MethodGet, "/api/videos"},
		{fiber.MethodPut, "/api/videos/:id"},
		{fiber.MethodGet, "/api/videos/:id/play"},
	} {
		assert.NotEqual(t, -1, routeIndex(routes, want.method, want.path),
			"missing route %s %s", want.method, want.path)
	}

	// PATCH was never part of the contract.
	assert.Equal(t, -1, routeIndex(routes, fiber.MethodPatch, "/api/ebooks/:id"))
	assert.Equal(t, -1, routeIndex(routes, fiber.MethodPatch, "/api/videos/:id"))
	// The old plural webinar path is gone.
	assert.Equal(t, -1, routeIndex(routes, fiber.MethodGet, "/api/webinars"))
}
