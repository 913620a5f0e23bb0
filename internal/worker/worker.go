package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/supportdesk/ticketing-service/internal/config"
	"github.com/supportdesk/ticketing-service/internal/mail"
	"github.com/supportdesk/ticketing-service/internal/queue"
)

// Worker consumes queued email and inbox jobs on a dedicated pool,
// separate from request handling. Jobs run to completion or failure
// independently of the submitting flow; there is no cancellation path.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	sender mail.Sender
	inbox  mail.InboxReader
	from   string
	logger *zap.Logger
}

// New assembles the queue server and its task handlers.
func New(redisCfg config.RedisConfig, cfg config.QueueConfig, sender mail.Sender, inbox mail.InboxReader, notifyCfg config.NotificationConfig, logger *zap.Logger) *Worker {
	server := asynq.NewServer(queue.RedisOpt(redisCfg), asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      map[string]int{cfg.Name: 1},
		Logger:      logger.Sugar(),
	})

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		sender: sender,
		inbox:  inbox,
		from:   notifyCfg.EmailFrom,
		logger: logger,
	}
	w.mux.HandleFunc(queue.TaskTypeSendEmail, w.handleSendEmail)
	w.mux.HandleFunc(queue.TaskTypeReadInbox, w.handleReadInbox)
	return w
}

// Run blocks processing jobs until SIGINT/SIGTERM.
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

// Start begins processing without blocking.
func (w *Worker) Start() error {
	return w.server.Start(w.mux)
}

// Shutdown drains in-flight jobs and stops the server.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleSendEmail(ctx context.Context, task *asynq.Task) error {
	var payload queue.SendEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode send-email payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := w.sender.Send(ctx, mail.Email{
		From:    w.from,
		To:      payload.Recipient,
		Subject: payload.Subject,
		Body:    payload.Body,
	}); err != nil {
		w.logger.Warn("send email job failed",
			zap.String("recipient", payload.Recipient),
			zap.Error(err))
		return fmt.Errorf("send email: %w", err)
	}

	w.logger.Info("email sent", zap.String("recipient", payload.Recipient))
	return w.writeResult(task, queue.SendEmailResult{
		Recipient: payload.Recipient,
		SentAt:    time.Now().UTC().Format(time.RFC3339),
	})
}

func (w *Worker) handleReadInbox(ctx context.Context, task *asynq.Task) error {
	var payload queue.ReadInboxPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode read-inbox payload: %v: %w", err, asynq.SkipRetry)
	}

	emails, err := w.inbox.ReadInbox(ctx, payload.Limit)
	if err != nil {
		w.logger.Warn("inbox read job failed", zap.Error(err))
		return fmt.Errorf("read inbox: %w", err)
	}

	w.logger.Info("inbox read", zap.Int("count", len(emails)))
	return w.writeResult(task, emails)
}

// writeResult records the job result for later polling; results persist
// for the queue's retention window.
func (w *Worker) writeResult(task *asynq.Task, result any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if rw := task.ResultWriter(); rw != nil {
		if _, err := rw.Write(data); err != nil {
			w.logger.Warn("write task result", zap.Error(err))
		}
	}
	return nil
}
