package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/supportdesk/ticketing-service/internal/domain"
	"github.com/supportdesk/ticketing-service/internal/mail"
	"github.com/supportdesk/ticketing-service/internal/repository"
)

// In-memory repository fakes. They mirror the Postgres implementations'
// observable behavior: pgx.ErrNoRows for missing records, generated IDs and
// creation timestamps on insert.

type fakeUserRepo struct {
	users map[string]domain.User
	seq   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.seq++
	user.ID = fmt.Sprintf("u%d", r.seq)
	user.CreatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeTicketRepo struct {
	tickets map[string]domain.Ticket
	seq     int
	base    time.Time
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets: make(map[string]domain.Ticket),
		base:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.seq++
	ticket.ID = fmt.Sprintf("t%d", r.seq)
	ticket.CreatedAt = r.base.Add(time.Duration(r.seq) * time.Minute)
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
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

func (r *fakeTicketRepo) ListPage(_ context.Context, limit, offset int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	all, _ := r.List(context.Background(), repository.TicketFilter{SortBy: "created_at", SortOrder: "asc"})
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

type fakeMessageRepo struct {
	messages []domain.Message
	seq      int
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.seq++
	msg.ID = fmt.Sprintf("m%d", r.seq)
	msg.CreatedAt = time.Now()
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *fakeMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Message, error) {
	var result []domain.Message
	for _, msg := range r.messages {
		if msg.TicketID == ticketID {
			result = append(result, msg)
		}
	}
	return result, nil
}

// recordingSender captures dispatched emails and can be told to fail.
type recordingSender struct {
	mu      sync.Mutex
	sent    []mail.Email
	failErr error
}

func (s *recordingSender) Send(_ context.Context, email mail.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	s.sent = append(s.sent, email)
	return nil
}

func (s *recordingSender) emails() []mail.Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mail.Email{}, s.sent...)
}
