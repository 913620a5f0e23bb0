package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/supportdesk/ticketing-service/internal/api/dto"
	"github.com/supportdesk/ticketing-service/internal/domain"
	"github.com/supportdesk/ticketing-service/internal/service"
	apperrors "github.com/supportdesk/ticketing-service/pkg/util"
)

// TicketsHandler exposes the ticket lifecycle endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService}
}

// CreateTicket handles POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Subject) == "" || req.UserID == "" {
		return apperrors.NewValidationError("subject and user_id required", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Subject: req.Subject,
		Message: req.Message,
		UserID:  req.UserID,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// ListTickets handles GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	query := service.TicketListQuery{
		SortBy:    c.Query("sort_by", "created_at"),
		SortOrder: c.Query("sort_order", "asc"),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.TicketStatus(statusStr)
		if !status.Valid() {
			return apperrors.NewValidationError("unknown status", map[string]any{"status": statusStr})
		}
		query.Status = &status
	}

	tickets, err := h.tickets.ListTickets(c.UserContext(), query)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return c.JSON(items)
}

// UpdateTicket handles PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketUpdateInput{Message: req.Message}
	if req.Status != nil {
		status := domain.TicketStatus(*req.Status)
		if !status.Valid() {
			return apperrors.NewValidationError("unknown status", map[string]any{"status": *req.Status})
		}
		input.Status = &status
	}

	ticket, err := h.tickets.UpdateTicket(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// AssignTicket handles PATCH /tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	operatorID := c.Query("operator_id")
	if operatorID == "" {
		return apperrors.NewValidationError("operator_id required", nil)
	}

	ticket, err := h.tickets.AssignTicket(c.UserContext(), c.Params("id"), operatorID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// ReplyToTicket handles POST /tickets/:id/reply.
func (h *TicketsHandler) ReplyToTicket(c *fiber.Ctx) error {
	replyMessage := c.Query("reply_message")
	if strings.TrimSpace(replyMessage) == "" {
		return apperrors.NewValidationError("reply_message required", nil)
	}

	if err := h.tickets.ReplyToTicket(c.UserContext(), c.Params("id"), replyMessage); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Reply sent successfully"})
}

// CloseTicket handles PATCH /tickets/:id/close.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	ticket, err := h.tickets.CloseTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}
