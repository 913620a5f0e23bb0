package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/supportdesk/ticketing-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Users    *handlers.UsersHandler
	Tickets  *handlers.TicketsHandler
	Messages *handlers.MessagesHandler
	Emails   *handlers.EmailsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/users", cfg.Users.CreateUser)

	app.Post("/tickets", cfg.Tickets.CreateTicket)
	app.Get("/tickets", cfg.Tickets.ListTickets)
	app.Patch("/tickets/:id", cfg.Tickets.UpdateTicket)
	app.Patch("/tickets/:id/assign", cfg.Tickets.AssignTicket)
	app.Post("/tickets/:id/reply", cfg.Tickets.ReplyToTicket)
	app.Patch("/tickets/:id/close", cfg.Tickets.CloseTicket)

	app.Post("/messages", cfg.Messages.SendMessage)

	app.Post("/emails/send_async", cfg.Emails.SendAsync)
	app.Post("/emails/async", cfg.Emails.StartInboxRead)
	app.Get("/emails/async/:job_id", cfg.Emails.JobStatus)
}
