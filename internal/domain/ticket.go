package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// Valid reports whether the status is a known lifecycle state.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusNew, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. OperatorID is only ever set
// while the ticket is NEW, and only to a user with the operator role. A
// CLOSED ticket never changes status again; further contact from the
// requester spawns a successor ticket instead.
type Ticket struct {
	ID         string
	Subject    string
	Message    string
	Status     TicketStatus
	UserID     string
	OperatorID *string
	CreatedAt  time.Time
}
