package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/supportdesk/ticketing-service/internal/api/dto"
	"github.com/supportdesk/ticketing-service/internal/service"
	apperrors "github.com/supportdesk/ticketing-service/pkg/util"
)

// MessagesHandler exposes the message-send endpoint.
type MessagesHandler struct {
	tickets *service.TicketService
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(ticketService *service.TicketService) *MessagesHandler {
	return &MessagesHandler{tickets: ticketService}
}

// SendMessage handles POST /messages. Sending to a closed ticket spawns a
// successor ticket; the response carries the message either way.
func (h *MessagesHandler) SendMessage(c *fiber.Ctx) error {
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" || req.TicketID == "" {
		return apperrors.NewValidationError("user_id and ticket_id required", nil)
	}
	if strings.TrimSpace(req.Text) == "" {
		return apperrors.NewValidationError("text required", nil)
	}

	msg, err := h.tickets.SendMessage(c.UserContext(), service.MessageCreateInput{
		UserID:   req.UserID,
		TicketID: req.TicketID,
		Text:     req.Text,
		Sender:   req.Sender,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewMessageResponse(msg))
}
