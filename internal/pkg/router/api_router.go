package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/bodhiverse/bodhika/app/controllers"
	"github.com/bodhiverse/bodhika/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(), middleware.APIKeyAuthMiddleware())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// Account
	api.Get("/user", middleware.RequireAuth, controllers.HandleGetUserAccount)
	api.Patch("/user/settings", middleware.RequireAuth, controllers.HandleUpdateUserSettings)
	api.Post("/user/api-key", middleware.RequireAuth, controllers.HandleIssueAPIKey)
	api.Delete("/user/api-key", middleware.RequireAuth, controllers.HandleRevokeAPIKey)

	// Entitlement state and grants
	api.Get("/subscription", middleware.RequireAuth, controllers.HandleGetSubscription)
	api.Post("/subscription/free", middleware.RequireAuth, controllers.HandleCreateFreeSubscription)
	api.Post("/subscription/progress", middleware.RequireAuth, controllers.HandleAdvanceSubscriptionDay)

	// Payments. The webhook is unauthenticated; it carries its own signature.
	api.Post("/razorpay/payments", middleware.RequireAuth, controllers.HandleCreatePaymentOrder)
	api.Post("/razorpay/payments/verify", middleware.RequireAuth, controllers.HandleVerifyPayment)
	api.Post("/razorpay/webhook", controllers.HandleRazorpayWebhook)

	// Webinars
	api.Get("/webinar", controllers.HandleListWebinars)
	api.Get("/webinar/:id", controllers.HandleGetWebinar)
	api.Post("/webinar", middleware.RequireAdmin, controllers.HandleCreateWebinar)
	api.Put("/webinar/:id", middleware.RequireAdmin, controllers.HandleUpdateWebinar)
	api.Delete("/webinar/:id", middleware.RequireAdmin, controllers.HandleDeleteWebinar)

	// EBooks. Listing is public; the download gate runs inside the handler
	// because always-free titles stay reachable without a premium plan.
	api.Get("/ebooks", controllers.HandleListEBooks)
	api.Get("/ebooks/:id", controllers.HandleGetEBook)
	api.Get("/ebooks/:id/download", middleware.RequireAuth, controllers.HandleDownloadEBook)
	api.Post("/ebooks", middleware.RequireAdmin, controllers.HandleCreateEBook)
	api.Put("/ebooks/:id", middleware.RequireAdmin, controllers.HandleUpdateEBook)
	api.Delete("/ebooks/:id", middleware.RequireAdmin, controllers.HandleDeleteEBook)

	// Videos
	api.Get("/videos", controllers.HandleListVideos)
	api.Get("/videos/:id", controllers.HandleGetVideo)
	api.Get("/videos/:id/play", middleware.RequireAuth, controllers.HandlePlayVideo)
	api.Post("/videos", middleware.RequireAdmin, controllers.HandleCreateVideo)
	api.Put("/videos/:id", middleware.RequireAdmin, controllers.HandleUpdateVideo)
	api.Delete("/videos/:id", middleware.RequireAdmin, controllers.HandleDeleteVideo)

	// Admin
	admin := api.Group("/admin", middleware.RequireAdmin)
	admin.Get("/users", controllers.HandleAdminListUsers)
	admin.Get("/users/:id/subscriptions", controllers.HandleAdminGetUserSubscriptions)
	admin.Post("/users/:id/disable", controllers.HandleAdminDisableUser)
	admin.Post("/subscriptions/:id/revoke", controllers.HandleAdminRevokeSubscription)
	admin.Get("/stats", controllers.HandleAdminStats)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
