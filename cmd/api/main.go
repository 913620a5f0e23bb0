package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/supportdesk/ticketing-service/internal/api/http"
	"github.com/supportdesk/ticketing-service/internal/api/http/handlers"
	"github.com/supportdesk/ticketing-service/internal/config"
	"github.com/supportdesk/ticketing-service/internal/events"
	"github.com/supportdesk/ticketing-service/internal/mail"
	"github.com/supportdesk/ticketing-service/internal/observability"
	"github.com/supportdesk/ticketing-service/internal/persistence"
	"github.com/supportdesk/ticketing-service/internal/queue"
	"github.com/supportdesk/ticketing-service/internal/repository"
	"github.com/supportdesk/ticketing-service/internal/service"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	queueClient := queue.NewClient(cfg.Redis, cfg.Queue)
	defer queueClient.Close() //nolint:errcheck

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)

	notifier := service.NewNotifier(mail.NewSMTPSender(cfg.SMTP), cfg.Notification, logger)
	dispatcher := events.NewInMemoryDispatcher()

	notificationService := service.NewNotificationService(dispatcher, notifier, logger)
	notificationService.RegisterHandlers()

	userService := service.NewUserService(userRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		UserRepo:    userRepo,
		TicketRepo:  ticketRepo,
		MessageRepo: messageRepo,
		Dispatcher:  dispatcher,
		Notifier:    notifier,
	})

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:    handlers.NewUsersHandler(userService),
		Tickets:  handlers.NewTicketsHandler(ticketService),
		Messages: handlers.NewMessagesHandler(ticketService),
		Emails:   handlers.NewEmailsHandler(queueClient),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	notifier.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
