package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/supportdesk/ticketing-service/internal/config"
	"github.com/supportdesk/ticketing-service/internal/mail"
	"github.com/supportdesk/ticketing-service/internal/observability"
	"github.com/supportdesk/ticketing-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	sender := mail.NewSMTPSender(cfg.SMTP)
	inbox := mail.NewIMAPReader(cfg.IMAP, logger)

	w := worker.New(cfg.Redis, cfg.Queue, sender, inbox, cfg.Notification, logger)

	logger.Info("worker starting",
		zap.String("queue", cfg.Queue.Name),
		zap.Int("concurrency", cfg.Queue.Concurrency))

	// Run blocks until SIGINT/SIGTERM and drains in-flight jobs.
	if err := w.Run(); err != nil {
		logger.Fatal("worker stopped", zap.Error(err))
	}
}
