package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/supportdesk/ticketing-service/internal/api/http/handlers"
	"github.com/supportdesk/ticketing-service/internal/config"
	"github.com/supportdesk/ticketing-service/internal/domain"
	"github.com/supportdesk/ticketing-service/internal/events"
	"github.com/supportdesk/ticketing-service/internal/mail"
	"github.com/supportdesk/ticketing-service/internal/observability"
	"github.com/supportdesk/ticketing-service/internal/repository"
	"github.com/supportdesk/ticketing-service/internal/service"
)

type memUserRepo struct {
	users map[string]domain.User
	seq   int
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.seq++
	user.ID = fmt.Sprintf("u%d", r.seq)
	user.CreatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type memTicketRepo struct {
	tickets map[string]domain.Ticket
	seq     int
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.seq++
	ticket.ID = fmt.Sprintf("t%d", r.seq)
	ticket.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.seq) * time.Minute)
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *memTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		result = append(result, ticket)
	}
	if filter.SortBy == "created_at" {
		asc := filter.SortOrder != "desc"
		sort.Slice(result, func(i, j int) bool {
			if asc {
				return result[i].CreatedAt.Before(result[j].CreatedAt)
			}
			return result[i].CreatedAt.After(result[j].CreatedAt)
		})
	}
	return result, nil
}

func (r *memTicketRepo) ListPage(_ context.Context, limit, offset int) ([]domain.Ticket, error) {
	all, _ := r.List(context.Background(), repository.TicketFilter{SortBy: "created_at"})
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

type memMessageRepo struct {
	messages []domain.Message
	seq      int
}

func (r *memMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.seq++
	msg.ID = fmt.Sprintf("m%d", r.seq)
	msg.CreatedAt = time.Now()
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *memMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Message, error) {
	var result []domain.Message
	for _, msg := range r.messages {
		if msg.TicketID == ticketID {
			result = append(result, msg)
		}
	}
	return result, nil
}

type nopSender struct{}

func (nopSender) Send(context.Context, mail.Email) error { return nil }

func newAPITestApp(t *testing.T) (*fiber.App, *service.Notifier) {
	t.Helper()
	logger := zap.NewNop()

	userRepo := &memUserRepo{users: make(map[string]domain.User)}
	ticketRepo := &memTicketRepo{tickets: make(map[string]domain.Ticket)}
	messageRepo := &memMessageRepo{}

	notifier := service.NewNotifier(nopSender{}, config.NotificationConfig{EmailFrom: "support@example.com"}, logger)
	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, notifier, logger).RegisterHandlers()

	ticketService := service.NewTicketService(service.TicketDependencies{
		UserRepo:    userRepo,
		TicketRepo:  ticketRepo,
		MessageRepo: messageRepo,
		Dispatcher:  dispatcher,
		Notifier:    notifier,
	})
	userService := service.NewUserService(userRepo)

	app := fiber.New()
	RegisterMiddlewares(app, logger, observability.NewMetrics(), 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:   handlers.NewHealthHandler("ticketing-service", "test", nil, nil),
		Users:    handlers.NewUsersHandler(userService),
		Tickets:  handlers.NewTicketsHandler(ticketService),
		Messages: handlers.NewMessagesHandler(ticketService),
		Emails:   handlers.NewEmailsHandler(nil),
	})
	return app, notifier
}

func doJSON(t *testing.T, app *fiber.App, method, target string, payload any) (int, map[string]any) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp.StatusCode, decoded
}

func createAPIUser(t *testing.T, app *fiber.App, email, role string) string {
	t.Helper()
	status, body := doJSON(t, app, "POST", "/users", map[string]string{
		"email": email, "name": "Test", "role": role,
	})
	require.Equal(t, 200, status)
	return body["id"].(string)
}

func TestCreateUserEndpoint(t *testing.T) {
	app, _ := newAPITestApp(t)

	status, body := doJSON(t, app, "POST", "/users", map[string]string{
		"email": "alice@example.com", "name": "Alice",
	})
	require.Equal(t, 200, status)
	assert.Equal(t, "alice@example.com", body["email"])
	assert.Equal(t, "user", body["role"])
	assert.NotEmpty(t, body["id"])
}

func TestCreateTicketEndpoint(t *testing.T) {
	app, _ := newAPITestApp(t)
	userID := createAPIUser(t, app, "alice@example.com", "user")

	status, body := doJSON(t, app, "POST", "/tickets", map[string]string{
		"subject": "VPN down", "message": "details", "user_id": userID,
	})
	require.Equal(t, 200, status)
	assert.Equal(t, "NEW", body["status"])
	assert.Equal(t, userID, body["user_id"])
	// The public representation never exposes the operator assignment.
	_, present := body["operator_id"]
	assert.False(t, present)
}

func TestCreateTicketEndpointValidation(t *testing.T) {
	app, _ := newAPITestApp(t)

	status, body := doJSON(t, app, "POST", "/tickets", map[string]string{"subject": "no user"})
	require.Equal(t, 400, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_FAILED", errBody["code"])
}

func TestListTicketsEndpointBadSortOrder(t *testing.T) {
	app, _ := newAPITestApp(t)

	status, body := doJSON(t, app, "GET", "/tickets?sort_order=sideways", nil)
	require.Equal(t, 400, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_FAILED", errBody["code"])
}

func TestListTicketsEndpointBadStatus(t *testing.T) {
	app, _ := newAPITestApp(t)

	status, body := doJSON(t, app, "GET", "/tickets?status=ARCHIVED", nil)
	require.Equal(t, 400, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_FAILED", errBody["code"])
}

func TestCloseTicketEndpointNotIdempotent(t *testing.T) {
	app, notifier := newAPITestApp(t)
	userID := createAPIUser(t, app, "alice@example.com", "user")

	_, body := doJSON(t, app, "POST", "/tickets", map[string]string{
		"subject": "VPN down", "user_id": userID,
	})
	ticketID := body["id"].(string)

	status, body := doJSON(t, app, "PATCH", "/tickets/"+ticketID+"/close", nil)
	require.Equal(t, 200, status)
	assert.Equal(t, "CLOSED", body["status"])

	status, body = doJSON(t, app, "PATCH", "/tickets/"+ticketID+"/close", nil)
	require.Equal(t, 400, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "INVALID_STATE", errBody["code"])

	notifier.Wait()
}

func TestAssignTicketEndpoint(t *testing.T) {
	app, _ := newAPITestApp(t)
	userID := createAPIUser(t, app, "alice@example.com", "user")
	operatorID := createAPIUser(t, app, "bob@example.com", "operator")

	_, body := doJSON(t, app, "POST", "/tickets", map[string]string{
		"subject": "VPN down", "user_id": userID,
	})
	ticketID := body["id"].(string)

	status, _ := doJSON(t, app, "PATCH", "/tickets/"+ticketID+"/assign?operator_id="+operatorID, nil)
	require.Equal(t, 200, status)

	// Assigning a non-operator reads as a missing operator.
	_, body = doJSON(t, app, "POST", "/tickets", map[string]string{
		"subject": "Second", "user_id": userID,
	})
	secondID := body["id"].(string)
	status, body = doJSON(t, app, "PATCH", "/tickets/"+secondID+"/assign?operator_id="+userID, nil)
	require.Equal(t, 404, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", errBody["code"])
}

func TestReplyEndpointRequiresAssignment(t *testing.T) {
	app, _ := newAPITestApp(t)
	userID := createAPIUser(t, app, "alice@example.com", "user")

	_, body := doJSON(t, app, "POST", "/tickets", map[string]string{
		"subject": "VPN down", "user_id": userID,
	})
	ticketID := body["id"].(string)

	status, body := doJSON(t, app, "POST", "/tickets/"+ticketID+"/reply?reply_message=hello", nil)
	require.Equal(t, 400, status)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "INVALID_STATE", errBody["code"])
}

func TestSendMessageEndpoint(t *testing.T) {
	app, notifier := newAPITestApp(t)
	userID := createAPIUser(t, app, "alice@example.com", "user")

	_, body := doJSON(t, app, "POST", "/tickets", map[string]string{
		"subject": "VPN down", "user_id": userID,
	})
	ticketID := body["id"].(string)

	status, body := doJSON(t, app, "POST", "/messages", map[string]string{
		"user_id": userID, "ticket_id": ticketID, "text": "any update?", "sender": "user",
	})
	require.Equal(t, 200, status)
	assert.Equal(t, "any update?", body["text"])
	assert.Equal(t, "user", body["sender"])
	assert.Equal(t, false, body["is_read"])

	notifier.Wait()
}

func TestHealthLiveEndpoint(t *testing.T) {
	app, _ := newAPITestApp(t)

	status, body := doJSON(t, app, "GET", "/health/live", nil)
	require.Equal(t, 200, status)
	assert.Equal(t, "alive", body["status"])
	assert.Equal(t, "ticketing-service", body["service"])
}
