package dto

import (
	"time"

	"github.com/supportdesk/ticketing-service/internal/domain"
)

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	UserID   string `json:"user_id"`
	TicketID string `json:"ticket_id"`
	Text     string `json:"text"`
	Sender   string `json:"sender"`
}

// MessageResponse representation.
type MessageResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessageResponse maps a domain message.
func NewMessageResponse(msg *domain.Message) MessageResponse {
	return MessageResponse{
		ID:        msg.ID,
		UserID:    msg.UserID,
		Text:      msg.Text,
		Sender:    msg.Sender,
		IsRead:    msg.IsRead,
		CreatedAt: msg.CreatedAt,
	}
}
