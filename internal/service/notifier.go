package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/supportdesk/ticketing-service/internal/config"
	"github.com/supportdesk/ticketing-service/internal/mail"
)

// Notifier composes minimal plaintext messages and dispatches them over the
// mail transport. Two named modes exist: Dispatch launches the send in the
// background and discards the outcome (failure is logged, never propagated),
// while Send blocks until the transport accepts the message. Durable
// delivery with a pollable handle goes through the job queue instead.
type Notifier struct {
	sender mail.Sender
	from   string
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewNotifier builds a notifier with injected transport and sender identity.
func NewNotifier(sender mail.Sender, cfg config.NotificationConfig, logger *zap.Logger) *Notifier {
	return &Notifier{
		sender: sender,
		from:   cfg.EmailFrom,
		logger: logger,
	}
}

// Send dispatches synchronously and reports transport acceptance.
func (n *Notifier) Send(ctx context.Context, subject, recipient, body string) error {
	return n.sender.Send(ctx, mail.Email{
		From:    n.from,
		To:      recipient,
		Subject: subject,
		Body:    body,
	})
}

// Dispatch launches a best-effort background send. The caller's mutation
// has already committed; a transport failure only produces a log line.
func (n *Notifier) Dispatch(subject, recipient, body string) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.Send(context.Background(), subject, recipient, body); err != nil {
			n.logger.Warn("notification dispatch failed",
				zap.String("recipient", recipient),
				zap.String("subject", subject),
				zap.Error(err))
			return
		}
		n.logger.Info("notification sent", zap.String("recipient", recipient))
	}()
}

// Wait blocks until in-flight background dispatches finish. Called during
// shutdown so accepted notifications are not dropped mid-send.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
