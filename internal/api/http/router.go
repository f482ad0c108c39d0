package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/citycare/issue-service/internal/api/http/handlers"
	"github.com/citycare/issue-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Issues         *handlers.IssuesHandler
	Feedback       *handlers.FeedbackHandler
	Notifications  *handlers.NotificationsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	ReportLimiter  fiber.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	authenticated := cfg.AuthMiddleware.Handle

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/forgot-password", cfg.Auth.ForgotPassword)
	authGroup.Post("/token/refresh", cfg.Auth.Refresh)
	authGroup.Post("/logout", authenticated, cfg.Auth.Logout)
	authGroup.Put("/edit-profile", authenticated, cfg.Auth.EditProfile)

	issues := app.Group("/issues", authenticated)
	if cfg.ReportLimiter != nil {
		issues.Post("/report", cfg.ReportLimiter, cfg.Issues.Report)
	} else {
		issues.Post("/report", cfg.Issues.Report)
	}
	issues.Get("/user", cfg.Issues.ListMine)

	app.Get("/notifications", authenticated, cfg.Notifications.ListMine)
	app.Post("/feedback/submit", authenticated, cfg.Feedback.Submit)

	admin := app.Group("/admin", authenticated, auth.RequireAdmin())
	admin.Get("/issues", cfg.Admin.ListIssues)
	admin.Put("/issues/:id/status", cfg.Admin.SetIssueStatus)
	admin.Get("/feedback", cfg.Admin.ListFeedback)
	admin.Get("/notifications", cfg.Admin.ListNotifications)
	admin.Post("/notifications/send", cfg.Admin.SendNotification)
}
