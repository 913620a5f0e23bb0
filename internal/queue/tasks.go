package queue

import (
	"github.com/hibiken/asynq"

	"github.com/supportdesk/ticketing-service/internal/config"
)

// Task type names shared by the enqueueing client and the worker.
const (
	TaskTypeSendEmail = "email:send"
	TaskTypeReadInbox = "inbox:read"
)

// SendEmailPayload carries one outbound notification.
type SendEmailPayload struct {
	Subject   string `json:"subject"`
	Recipient string `json:"recipient"`
	Body      string `json:"body"`
}

// ReadInboxPayload asks the worker to fetch recent inbox messages.
type ReadInboxPayload struct {
	Limit int `json:"limit"`
}

// SendEmailResult is recorded as the task result on success.
type SendEmailResult struct {
	Recipient string `json:"recipient"`
	SentAt    string `json:"sent_at"`
}

// RedisOpt translates service Redis configuration for asynq.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
