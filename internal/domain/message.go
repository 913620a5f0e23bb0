package domain

import "time"

// Message is a single communication unit attached to a ticket. Sender is a
// free-form tag ("user", "operator") recorded as sent by the caller; it is
// not derived from the author's role. Messages are never mutated after
// creation; IsRead is reserved for a future read-tracking flow.
type Message struct {
	ID        string
	UserID    string
	TicketID  string
	Text      string
	Sender    string
	IsRead    bool
	CreatedAt time.Time
}
