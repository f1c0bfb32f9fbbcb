package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bodhiverse/bodhika/app/controllers"
	"github.com/bodhiverse/bodhika/app/repository"
	"github.com/bodhiverse/bodhika/internal/pkg/cache"
	"github.com/bodhiverse/bodhika/internal/pkg/database"
	"github.com/bodhiverse/bodhika/internal/pkg/env"
	"github.com/bodhiverse/bodhika/internal/pkg/metrics/counter"
	"github.com/bodhiverse/bodhika/internal/pkg/router"
	"github.com/bodhiverse/bodhika/internal/pkg/webinarstate"
)

func main() {
	app, scheduler := NewApplication()

	// graceful shutdown: stop pending reminders and drain counters
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		scheduler.Close()
		if err := counter.FlushAll(); err != nil {
			log.Printf("final counter flush failed: %v", err)
		}
		_ = app.Shutdown()
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	if err != nil {
		log.Fatal(err)
	}
}

func NewApplication() (*fiber.App, *webinarstate.Scheduler) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	// init fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 104857600, // 100 MiB, ebook and cover uploads
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), monitor.New())

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "./public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// reminder scheduler, rearmed from the database on boot
	scheduler := webinarstate.NewScheduler()
	controllers.SetWebinarScheduler(scheduler)

	// ROUTER
	router.InstallRouter(app)

	rescheduleUpcomingWebinars()
	startCounterFlusher()
	startSubscriptionExpiry()

	return app, scheduler
}

// rescheduleUpcomingWebinars rearms reminder countdowns after a restart.
// In-memory timers do not survive the process; the database does.
func rescheduleUpcomingWebinars() {
	webinars, err := repository.GetGlobalRepositories().Webinar.GetUpcoming(time.Now(), 500)
	if err != nil {
		log.Printf("webinar reschedule scan failed: %v", err)
		return
	}
	for i := range webinars {
		controllers.ScheduleWebinarReminder(&webinars[i])
	}
	log.Printf("rearmed reminders for %d upcoming webinars", len(webinars))
}

// startCounterFlusher periodically drains pending view/download counters
// from Redis into the database.
func startCounterFlusher() {
	interval := 30 * time.Second
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			if err := counter.FlushAll(); err != nil {
				log.Printf("counter flush failed: %v", err)
			}
		}
	}()
}

// startSubscriptionExpiry flips the active flag on lapsed subscriptions.
// The entitlement evaluator trusts the active flag rather than re-checking
// the date window, so this sweep is what actually retires lapsed plans.
func startSubscriptionExpiry() {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			n, err := repository.GetGlobalRepositories().Subscription.DeactivateExpired(time.Now())
			if err != nil {
				log.Printf("subscription expiry sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("deactivated %d expired subscriptions", n)
			}
		}
	}()
}
