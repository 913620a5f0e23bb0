package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/supportdesk/ticketing-service/internal/domain"
)

// MessageRepository encapsulates message persistence.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository instantiates repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	const query = `
        INSERT INTO messages (user_id, ticket_id, text, sender)
        VALUES ($1,$2,$3,$4)
        RETURNING id, is_read, created_at`
	return r.pool.QueryRow(ctx, query,
		msg.UserID,
		msg.TicketID,
		msg.Text,
		msg.Sender,
	).Scan(&msg.ID, &msg.IsRead, &msg.CreatedAt)
}

func (r *messageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	const query = `
        SELECT id, user_id, ticket_id, text, sender, is_read, created_at
        FROM messages WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.UserID,
			&msg.TicketID,
			&msg.Text,
			&msg.Sender,
			&msg.IsRead,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
