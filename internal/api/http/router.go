package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clinic-portal/internal/api/http/handlers"
	"github.com/spec-kit/clinic-portal/internal/auth"
	"github.com/spec-kit/clinic-portal/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Bookings       *handlers.BookingsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Protected groups run the gate first,
// then role/capability predicates, then (for customer-scoped routes)
// effective-customer resolution, in that order.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/customers/login", cfg.Auth.LoginCustomer)
	authGroup.Post("/employees/login", cfg.Auth.LoginEmployee)
	authGroup.Post("/receptionists/login", cfg.Auth.LoginReceptionist)

	protected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/logout", cfg.Auth.Logout)
	protected.Get("/sessions", cfg.Auth.Sessions)

	bookings := app.Group("/bookings", cfg.AuthMiddleware.Handle)
	bookings.Get("/availability", auth.AllowBookingAccess(), cfg.Bookings.Availability)

	customerScoped := bookings.Group("",
		auth.RequireRoleIn(domain.RoleCustomer, domain.RoleReceptionist),
		auth.RequireCanBookMediaDay(),
		auth.ResolveEffectiveCustomer(),
	)
	customerScoped.Post("", cfg.Bookings.Create)
	customerScoped.Get("", cfg.Bookings.List)
}
