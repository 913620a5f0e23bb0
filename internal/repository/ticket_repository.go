package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/supportdesk/ticketing-service/internal/domain"
)

// TicketFilter captures listing parameters. SortBy/SortOrder are validated
// by the caller; only created_at sorting is recognized here.
type TicketFilter struct {
	Status    *domain.TicketStatus
	SortBy    string
	SortOrder string
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListPage(ctx context.Context, limit, offset int) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (subject, message, status, user_id, operator_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Subject,
		ticket.Message,
		ticket.Status,
		ticket.UserID,
		ticket.OperatorID,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET subject=$1, message=$2, status=$3, operator_id=$4
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Subject,
		ticket.Message,
		ticket.Status,
		ticket.OperatorID,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, subject, message, status, user_id, operator_id, created_at
        FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Subject,
		&ticket.Message,
		&ticket.Status,
		&ticket.UserID,
		&ticket.OperatorID,
		&ticket.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// List returns tickets filtered by status and sorted by created_at. The
// filter/sort path is deliberately not combined with ListPage.
func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT id, subject, message, status, user_id, operator_id, created_at
             FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	order := ""
	if filter.SortBy == "created_at" {
		direction := "ASC"
		if strings.EqualFold(filter.SortOrder, "desc") {
			direction = "DESC"
		}
		order = " ORDER BY created_at " + direction
	}

	query := fmt.Sprintf("%s WHERE %s%s", base, strings.Join(clauses, " AND "), order)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// ListPage returns a plain skip/limit page of tickets.
func (r *ticketRepository) ListPage(ctx context.Context, limit, offset int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT id, subject, message, status, user_id, operator_id, created_at
             FROM tickets LIMIT %d OFFSET %d`, limit, offset)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Subject,
			&ticket.Message,
			&ticket.Status,
			&ticket.UserID,
			&ticket.OperatorID,
			&ticket.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
