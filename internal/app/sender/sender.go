// Package sender собирает почтовый воркер: потребители очередей
// RabbitMQ и SMTP-транспорт.
package sender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/newsroom-backend/internal/config"
	"github.com/magabrotheeeer/newsroom-backend/internal/lib/sl"
	"github.com/magabrotheeeer/newsroom-backend/internal/lib/smtp"
	"github.com/magabrotheeeer/newsroom-backend/internal/rabbitmq"
	senderservice "github.com/magabrotheeeer/newsroom-backend/internal/services/sender"
	"github.com/magabrotheeeer/newsroom-backend/internal/storage/repository"
)

// App инкапсулирует зависимости почтового воркера.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New создает воркер: подключает хранилище, очередь и SMTP-транспорт.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetEmailQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg, logger)
	senderService := senderservice.NewSenderService(transport, db, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run запускает потребителей очередей и блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	consumers := map[string]func([]byte) error{
		"emails.verification": a.senderService.SendVerificationEmail,
		"emails.mfa":          a.senderService.SendMfaEmail,
		"emails.published":    a.senderService.SendPublishedEmail,
	}
	for queue, handler := range consumers {
		if err := rabbitmq.ConsumerMessage(ctx, a.ch, queue, handler); err != nil {
			a.logger.Error("failed to start consumer",
				slog.String("queue", queue), sl.Err(err))
			return err
		}
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
