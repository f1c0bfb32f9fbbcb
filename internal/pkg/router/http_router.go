package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bodhiverse/bodhika/app/controllers"
	"github.com/bodhiverse/bodhika/internal/pkg/middleware"
	"github.com/bodhiverse/bodhika/internal/pkg/oauth"
	"github.com/bodhiverse/bodhika/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	h.registerAuthRoutes(app)
}

func (h HttpRouter) registerAuthRoutes(app *fiber.App) {
	app.Post("/register", controllers.HandleAuthRegister)
	app.Post("/login", controllers.HandleAuthLogin)
	app.Post("/logout", controllers.HandleAuthLogout)

	// OAuth (Google). Goth manages its own session store on these routes.
	// The static logout route must precede the :provider routes; fiber
	// matches in registration order and would otherwise treat "logout" as a
	// provider name.
	app.Get("/auth/logout", controllers.HandleOAuthLogout)
	app.Get("/auth/:provider", controllers.HandleOAuthBegin)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
