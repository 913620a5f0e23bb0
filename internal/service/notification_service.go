package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/supportdesk/ticketing-service/internal/events"
)

// NotificationService turns lifecycle events into emails. Every path here
// is best-effort: handlers return nil so a notification problem never
// unwinds the mutation that published the event.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifier   *Notifier
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifier *Notifier, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to lifecycle events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketMessageAdded, n.handleTicketMessageAdded)
	n.dispatcher.Subscribe(events.EventTicketClosed, n.handleTicketClosed)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok || payload.RecipientEmail == "" {
		return nil
	}
	body := fmt.Sprintf("Hello, %s!\n\nYour ticket %q has been received and is being processed.",
		nameOrFallback(payload.RecipientName, "user"), payload.Subject)
	n.notifier.Dispatch("Your ticket has been received", payload.RecipientEmail, body)
	return nil
}

// handleTicketMessageAdded notifies the assigned operator of a new user
// message. Operator-authored messages and unassigned tickets are skipped.
func (n *NotificationService) handleTicketMessageAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketMessageAddedPayload)
	if !ok {
		return nil
	}
	if payload.OperatorEmail == "" || payload.Sender != "user" {
		return nil
	}
	subject := fmt.Sprintf("New message on ticket #%s", event.TicketID)
	body := fmt.Sprintf("Hello, %s!\n\nUser %s wrote a new message:\n\n%s\n\nPlease reply in the system.",
		nameOrFallback(payload.OperatorName, "operator"),
		nameOrFallback(payload.SenderName, "unknown"),
		payload.Text)
	n.notifier.Dispatch(subject, payload.OperatorEmail, body)
	return nil
}

func (n *NotificationService) handleTicketClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClosedPayload)
	if !ok || payload.RecipientEmail == "" {
		return nil
	}
	body := fmt.Sprintf("Hello, %s!\n\nYour ticket %q has been resolved and closed.\n\nIf you have further questions, please open a new ticket.",
		nameOrFallback(payload.RecipientName, "user"), payload.Subject)
	n.notifier.Dispatch("Your ticket has been closed", payload.RecipientEmail, body)
	return nil
}

func nameOrFallback(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
