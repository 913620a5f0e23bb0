package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/supportdesk/ticketing-service/internal/domain"
	"github.com/supportdesk/ticketing-service/internal/events"
	"github.com/supportdesk/ticketing-service/internal/repository"
	apperrors "github.com/supportdesk/ticketing-service/pkg/util"
)

// reopenedSuffix marks a successor ticket spawned from a closed thread.
const reopenedSuffix = " (reopened)"

// TicketService owns the ticket and message lifecycle: creation, reopening,
// assignment, closing, and the decision of when to trigger notifications.
// Mutations commit first; notifications are launched afterwards and their
// failure never unwinds the mutation.
type TicketService struct {
	users      repository.UserRepository
	tickets    repository.TicketRepository
	messages   repository.MessageRepository
	dispatcher events.Dispatcher
	notifier   *Notifier
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	UserRepo    repository.UserRepository
	TicketRepo  repository.TicketRepository
	MessageRepo repository.MessageRepository
	Dispatcher  events.Dispatcher
	Notifier    *Notifier
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject string
	Message string
	UserID  string
}

// TicketListQuery describes listing filters.
type TicketListQuery struct {
	Status    *domain.TicketStatus
	SortBy    string
	SortOrder string
}

// TicketUpdateInput describes a partial update; nil fields are untouched.
type TicketUpdateInput struct {
	Status  *domain.TicketStatus
	Message *string
}

// MessageCreateInput describes a message-send payload.
type MessageCreateInput struct {
	UserID   string
	TicketID string
	Text     string
	Sender   string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		users:      deps.UserRepo,
		tickets:    deps.TicketRepo,
		messages:   deps.MessageRepo,
		dispatcher: deps.Dispatcher,
		notifier:   deps.Notifier,
	}
}

// CreateTicket persists a new NEW ticket and notifies the requester in the
// background. The owning user is resolved first so a ticket is never
// persisted against a missing user.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	user, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": input.UserID})
		}
		return nil, apperrors.MapError(err)
	}

	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject required", nil)
	}

	ticket := &domain.Ticket{
		Subject: subject,
		Message: input.Message,
		Status:  domain.TicketStatusNew,
		UserID:  user.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Subject:        ticket.Subject,
			RecipientEmail: user.Email,
			RecipientName:  user.Name,
		},
	})
	return ticket, nil
}

// ListTickets returns tickets filtered by status and sorted by created_at.
// A sort_order outside asc/desc is a caller error, not a silent default.
func (s *TicketService) ListTickets(ctx context.Context, query TicketListQuery) ([]domain.Ticket, error) {
	sortBy := query.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	sortOrder := query.SortOrder
	if sortOrder == "" {
		sortOrder = "asc"
	}
	if sortBy == "created_at" && sortOrder != "asc" && sortOrder != "desc" {
		return nil, apperrors.NewValidationError("sort_order must be asc or desc", map[string]any{"sort_order": sortOrder})
	}

	tickets, err := s.tickets.List(ctx, repository.TicketFilter{
		Status:    query.Status,
		SortBy:    sortBy,
		SortOrder: sortOrder,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListTicketsPage returns a plain skip/limit page, deliberately separate
// from the filtered/sorted listing path.
func (s *TicketService) ListTicketsPage(ctx context.Context, limit, offset int) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListPage(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// SendMessage appends a message to a ticket. A CLOSED ticket is never
// appended to: a successor ticket is created for the same user with a
// reopen marker on the subject, and the message attaches there. The
// assigned operator is notified only for user-authored messages.
func (s *TicketService) SendMessage(ctx context.Context, input MessageCreateInput) (*domain.Message, error) {
	user, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": input.UserID})
		}
		return nil, apperrors.MapError(err)
	}

	ticket, err := s.tickets.GetByID(ctx, input.TicketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": input.TicketID})
		}
		return nil, apperrors.MapError(err)
	}

	if ticket.Status == domain.TicketStatusClosed {
		successor := &domain.Ticket{
			Subject: ticket.Subject + reopenedSuffix,
			Status:  domain.TicketStatusNew,
			UserID:  user.ID,
		}
		if err := s.tickets.Create(ctx, successor); err != nil {
			return nil, apperrors.MapError(err)
		}
		ticket = successor
	}

	msg := &domain.Message{
		UserID:   user.ID,
		TicketID: ticket.ID,
		Text:     input.Text,
		Sender:   input.Sender,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}

	operatorEmail, operatorName := s.resolveOperator(ctx, ticket)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticket.ID,
		Payload: events.TicketMessageAddedPayload{
			MessageID:     msg.ID,
			Text:          msg.Text,
			Sender:        msg.Sender,
			SenderName:    user.Name,
			OperatorEmail: operatorEmail,
			OperatorName:  operatorName,
		},
	})
	return msg, nil
}

// UpdateTicket applies a partial update. No transition validation happens
// here: this is the administrative override path, more permissive than the
// dedicated close/assign operations. The owner is notified whenever the
// resulting status is CLOSED, even if the patch did not touch status.
func (s *TicketService) UpdateTicket(ctx context.Context, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	if input.Status != nil {
		ticket.Status = *input.Status
	}
	if input.Message != nil {
		ticket.Message = *input.Message
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if ticket.Status == domain.TicketStatusClosed {
		s.publishTicketClosed(ctx, ticket)
	}
	return ticket, nil
}

// AssignTicket sets the operator on a NEW ticket. Assignment is the sole
// legal path into operator ownership; any other status is rejected.
func (s *TicketService) AssignTicket(ctx context.Context, ticketID, operatorID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if ticket.Status != domain.TicketStatusNew {
		return nil, apperrors.NewInvalidState("only NEW tickets can be assigned", map[string]any{"status": ticket.Status})
	}

	operator, err := s.users.GetByID(ctx, operatorID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if operator == nil || operator.Role != domain.RoleOperator {
		return nil, apperrors.NewNotFound("operator", map[string]any{"operator_id": operatorID})
	}

	ticket.OperatorID = &operator.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ReplyToTicket sends one email to the requester with the reply text. This
// is the single operation that blocks on dispatch: the caller wants
// confirmation that the transport accepted the message. The reply is not
// persisted as a Message.
func (s *TicketService) ReplyToTicket(ctx context.Context, ticketID, replyText string) error {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	if ticket.OperatorID == nil {
		return apperrors.NewInvalidState("ticket is not assigned to any operator", nil)
	}

	user, err := s.users.GetByID(ctx, ticket.UserID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	if user == nil || user.Email == "" {
		return apperrors.NewNotFound("user email", map[string]any{"user_id": ticket.UserID})
	}

	subject := "Reply to your ticket: " + ticket.Subject
	if err := s.notifier.Send(ctx, subject, user.Email, replyText); err != nil {
		return apperrors.NewDispatchFailed(err)
	}
	return nil
}

// CloseTicket moves a ticket to CLOSED. Closing is not idempotent: a second
// close is an invalid-state error.
func (s *TicketService) CloseTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewInvalidState("ticket is already closed", map[string]any{"ticket_id": ticketID})
	}

	ticket.Status = domain.TicketStatusClosed
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishTicketClosed(ctx, ticket)
	return ticket, nil
}

func (s *TicketService) resolveOperator(ctx context.Context, ticket *domain.Ticket) (email, name string) {
	if ticket.OperatorID == nil {
		return "", ""
	}
	operator, err := s.users.GetByID(ctx, *ticket.OperatorID)
	if err != nil {
		return "", ""
	}
	return operator.Email, operator.Name
}

func (s *TicketService) publishTicketClosed(ctx context.Context, ticket *domain.Ticket) {
	owner, err := s.users.GetByID(ctx, ticket.UserID)
	if err != nil || owner.Email == "" {
		return
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketClosed,
		TicketID: ticket.ID,
		Payload: events.TicketClosedPayload{
			Subject:        ticket.Subject,
			RecipientEmail: owner.Email,
			RecipientName:  owner.Name,
		},
	})
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
