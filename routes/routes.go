package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/meinhoongagan/homeservice/controllers"
	"github.com/meinhoongagan/homeservice/middleware"
	"github.com/meinhoongagan/homeservice/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Auth      *services.AuthService
	Profiles  *services.ProfileService
	Catalog   *services.CatalogService
	Bookings  *services.BookingService
	Messaging *services.MessagingService
	Admin     *services.AdminService

	JWTSecret string
	// Denylist may be nil, in which case logged-out tokens stay valid until expiry.
	Denylist           middleware.RevocationChecker
	RateLimitPerMinute int
	// RateLimitBurst defaults to 5.
	RateLimitBurst int
	Log            *zap.Logger
}

// New builds the fiber app with every route group mounted.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "homeservice",
		ErrorHandler: controllers.ErrorHandler(d.Log),
		BodyLimit:    30 << 20,
		ReadTimeout:  30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.RequestLogger(d.Log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	protected := middleware.Protected(d.JWTSecret, d.Denylist, d.Log)

	SetupAuthRoutes(app, d, protected)
	SetupBrowseRoutes(app, d)
	SetupConsumerRoutes(app, d, protected)
	SetupProviderRoutes(app, d, protected)
	SetupMessageRoutes(app, d, protected)
	SetupAdminRoutes(app, d, protected)
	return app
}
