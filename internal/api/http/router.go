package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/portal-service/internal/api/http/handlers"
	"github.com/spec-kit/portal-service/internal/auth"
	"github.com/spec-kit/portal-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Auth            *handlers.AuthHandler
	Org             *handlers.OrgHandler
	Functionalities *handlers.FunctionalityHandler
	Tickets         *handlers.TicketsHandler
	Analytics       *handlers.AnalyticsHandler
	AuthMiddleware  *auth.AuthMiddleware
	Registry        *prometheus.Registry
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{})))
	}

	privileged := auth.RequireRole(domain.EmployeeRoleManager, domain.EmployeeRoleAdmin)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle)
	authProtected.Get("/me", cfg.Auth.Me)
	authProtected.Post("/password/change", cfg.Auth.ChangePassword)
	authProtected.Post("/register", auth.RequireRole(domain.EmployeeRoleAdmin), cfg.Auth.Register)

	api := app.Group("", cfg.AuthMiddleware.Handle)

	api.Get("/employees", privileged, cfg.Org.ListEmployees)
	api.Get("/employees/:id", cfg.Org.GetEmployee)
	api.Get("/groups", cfg.Org.ListGroups)
	api.Post("/groups", privileged, cfg.Org.CreateGroup)
	api.Get("/groups/:id", cfg.Org.GetGroup)

	api.Get("/functionalities", cfg.Functionalities.List)
	api.Post("/functionalities", privileged, cfg.Functionalities.Save)
	api.Post("/functionalities/import", privileged, cfg.Functionalities.Import)
	api.Get("/functionalities/:id", cfg.Functionalities.Get)

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/assign", cfg.Tickets.Assign)
	tickets.Post("/:id/reassign", cfg.Tickets.Reassign)
	tickets.Post("/:id/assign-group", cfg.Tickets.AssignGroup)
	tickets.Post("/:id/advance", cfg.Tickets.Advance)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)

	analytics := api.Group("/analytics")
	analytics.Get("/employees/:id/contributions",
		auth.RequireSelfOrRole("id", domain.EmployeeRoleManager, domain.EmployeeRoleAdmin),
		cfg.Analytics.EmployeeContributions)
	analytics.Get("/leaderboard", cfg.Analytics.Leaderboard)
}
