package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campushub/portal-api/internal/config"
	"github.com/campushub/portal-api/internal/handler"
	"github.com/campushub/portal-api/internal/middleware"
	"github.com/campushub/portal-api/internal/models"
	"github.com/campushub/portal-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	CourseHandler     *handler.CourseHandler
	AssignmentHandler *handler.AssignmentHandler
	AttendanceHandler *handler.AttendanceHandler
	DashboardHandler  *handler.DashboardHandler
	ActivityHandler   *handler.ActivityHandler
	JWTMiddleware     fiber.Handler
	LoginRateLimit    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/v1/health", handler.HealthCheck(cfg))
	app.Get(observability.MetricsPath, observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		if deps.LoginRateLimit != nil {
			auth.Use(deps.LoginRateLimit)
		}
		deps.AuthHandler.Register(auth)
		deps.AuthHandler.RegisterProtected(auth.Group("", jwtMiddleware))
	}

	if deps.UserHandler != nil {
		users := api.Group("/users", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.UserHandler.Register(users)
	}

	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware)
		deps.CourseHandler.Register(courses)
		deps.CourseHandler.RegisterAdmin(courses.Group("", middleware.RequireRole(models.RoleAdmin)))
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware)
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.AttendanceHandler != nil {
		attendance := api.Group("/attendance", jwtMiddleware)
		deps.AttendanceHandler.Register(attendance)
	}

	if deps.DashboardHandler != nil {
		dashboard := api.Group("/dashboard", jwtMiddleware)
		deps.DashboardHandler.Register(dashboard)
	}

	if deps.ActivityHandler != nil {
		activity := api.Group("/activity", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.ActivityHandler.Register(activity)
	}
}
