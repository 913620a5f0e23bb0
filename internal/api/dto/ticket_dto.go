package dto

import (
	"time"

	"github.com/supportdesk/ticketing-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// UpdateTicketRequest describes a partial ticket update.
type UpdateTicketRequest struct {
	Status  *string `json:"status"`
	Message *string `json:"message"`
}

// TicketResponse representation.
type TicketResponse struct {
	ID        string              `json:"id"`
	Subject   string              `json:"subject"`
	Message   string              `json:"message"`
	CreatedAt time.Time           `json:"created_at"`
	Status    domain.TicketStatus `json:"status"`
	UserID    string              `json:"user_id"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:        ticket.ID,
		Subject:   ticket.Subject,
		Message:   ticket.Message,
		CreatedAt: ticket.CreatedAt,
		Status:    ticket.Status,
		UserID:    ticket.UserID,
	}
}
