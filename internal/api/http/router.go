package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ops-desk/internal/api/http/handlers"
	"github.com/spec-kit/ops-desk/internal/auth"
	"github.com/spec-kit/ops-desk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Events         *handlers.EventsHandler
	Tickets        *handlers.TicketsHandler
	Articles       *handlers.ArticlesHandler
	Audit          *handlers.AuditHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Reads need any authenticated role; mutations
// pass the role gate first.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	app.Post("/auth/login", cfg.Auth.Login)

	protected := func(prefix string) fiber.Router {
		return app.Group(prefix, cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	}
	gate := auth.RequireMutation

	me := protected("/me")
	me.Get("", cfg.Auth.Me)
	me.Put("", cfg.Auth.UpdateMe)
	me.Post("/password", cfg.Auth.ChangePassword)

	events := protected("/events")
	events.Get("", cfg.Events.List)
	events.Post("", gate(domain.EntityEvent, domain.OpCreate), cfg.Events.Create)
	events.Post("/preview", cfg.Events.Preview)
	events.Get("/:id", cfg.Events.Get)
	events.Put("/:id", gate(domain.EntityEvent, domain.OpUpdate), cfg.Events.Update)
	events.Patch("/:id/status", gate(domain.EntityEvent, domain.OpUpdate), cfg.Events.UpdateStatus)
	events.Patch("/:id/payout-executed", gate(domain.EntityEvent, domain.OpUpdate), cfg.Events.SetPayoutExecuted)
	events.Patch("/:id/fees-received", gate(domain.EntityEvent, domain.OpUpdate), cfg.Events.SetFeesReceived)
	events.Delete("/:id", gate(domain.EntityEvent, domain.OpDelete), cfg.Events.Delete)

	tickets := protected("/tickets")
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/stats", cfg.Tickets.Stats)
	tickets.Get("/categories", cfg.Tickets.Categories)
	tickets.Post("", gate(domain.EntityTicket, domain.OpCreate), cfg.Tickets.Create)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Put("/:id", gate(domain.EntityTicket, domain.OpUpdate), cfg.Tickets.Update)
	tickets.Patch("/:id/status", gate(domain.EntityTicket, domain.OpUpdate), cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/assignee", gate(domain.EntityTicket, domain.OpUpdate), cfg.Tickets.Assign)
	tickets.Patch("/:id/backlog", gate(domain.EntityTicket, domain.OpUpdate), cfg.Tickets.SetBacklog)
	tickets.Get("/:id/backlog.md", cfg.Tickets.BacklogMarkdown)
	tickets.Post("/:id/attachments", gate(domain.EntityTicket, domain.OpUpdate), cfg.Tickets.AddAttachment)
	tickets.Delete("/:id/attachments/:attachmentId", gate(domain.EntityTicket, domain.OpUpdate), cfg.Tickets.DeleteAttachment)
	tickets.Delete("/:id", gate(domain.EntityTicket, domain.OpDelete), cfg.Tickets.Delete)

	articles := protected("/articles")
	articles.Get("", cfg.Articles.List)
	articles.Get("/categories", cfg.Articles.Categories)
	articles.Post("", gate(domain.EntityArticle, domain.OpCreate), cfg.Articles.Create)
	articles.Get("/:id", cfg.Articles.Get)
	articles.Put("/:id", gate(domain.EntityArticle, domain.OpUpdate), cfg.Articles.Update)
	articles.Post("/:id/tags", gate(domain.EntityArticle, domain.OpUpdate), cfg.Articles.AddTag)
	articles.Delete("/:id/tags/:tag", gate(domain.EntityArticle, domain.OpUpdate), cfg.Articles.RemoveTag)
	articles.Delete("/:id", gate(domain.EntityArticle, domain.OpDelete), cfg.Articles.Delete)

	audit := protected("/audit-log")
	audit.Get("", cfg.Audit.List)
	audit.Get("/stats", cfg.Audit.Stats)

	protected("/dashboard").Get("/summary", cfg.Dashboard.Summary)
}

// NewApp builds the fiber app with the JSON error handler installed.
func NewApp(appName string, cfg RouteConfig, deps AppDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      appName,
		ErrorHandler: ErrorHandler(deps.Logger, deps.Metrics),
		UnescapePath: true,
		BodyLimit:    deps.BodyLimit,
	})
	RegisterMiddlewares(app, deps.Logger, deps.Metrics, deps.Timeout)
	RegisterRoutes(app, cfg)
	return app
}
