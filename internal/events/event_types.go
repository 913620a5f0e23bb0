package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventTicketMessageAdded EventType = "ticket_message_added"
	EventTicketClosed       EventType = "ticket_closed"
)

// Event represents a domain event emitted by the lifecycle engine. Payloads
// carry the resolved recipient so subscribers never read the store.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload notifies the requester their ticket was received.
type TicketCreatedPayload struct {
	Subject        string `json:"subject"`
	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name"`
}

// TicketMessageAddedPayload notifies the assigned operator of user replies.
// OperatorEmail is empty when the ticket is unassigned or the operator has
// no usable address; subscribers skip dispatch in that case.
type TicketMessageAddedPayload struct {
	MessageID     string `json:"message_id"`
	Text          string `json:"text"`
	Sender        string `json:"sender"`
	SenderName    string `json:"sender_name"`
	OperatorEmail string `json:"operator_email"`
	OperatorName  string `json:"operator_name"`
}

// TicketClosedPayload notifies the requester their ticket was closed. It is
// published both by the dedicated close operation and by a partial update
// whose resulting status is CLOSED.
type TicketClosedPayload struct {
	Subject        string `json:"subject"`
	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name"`
}
