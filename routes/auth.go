package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/homeservice/controllers"
	"github.com/meinhoongagan/homeservice/middleware"
)

// SetupAuthRoutes configures sign-up, verification, login and the caller's profile.
func SetupAuthRoutes(app *fiber.App, d Deps, protected fiber.Handler) {
	h := controllers.NewAuthController(d.Auth, d.Profiles)
	burst := d.RateLimitBurst
	if burst == 0 {
		burst = 5
	}
	limiter := middleware.NewIPRateLimiter(d.RateLimitPerMinute, burst, d.Log)

	auth := app.Group("/auth", limiter.Handler())
	auth.Post("/register", h.Register)
	auth.Post("/register/provider", h.RegisterProvider)
	auth.Post("/verify-email", h.VerifyEmail)
	auth.Post("/login", h.Login)

	auth.Post("/logout", protected, h.Logout)
	auth.Get("/me", protected, h.Me)

	app.Post("/profile/location", protected, h.SaveLocation)
}
