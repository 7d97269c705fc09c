// Package newsroom собирает HTTP-приложение редакции: хранилище, кеш,
// очередь уведомлений, бизнес-сервисы и маршруты.
package newsroom

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/newsroom-backend/internal/cache"
	"github.com/magabrotheeeer/newsroom-backend/internal/config"
	"github.com/magabrotheeeer/newsroom-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/newsroom-backend/internal/lib/sl"
	"github.com/magabrotheeeer/newsroom-backend/internal/migrations"
	"github.com/magabrotheeeer/newsroom-backend/internal/rabbitmq"
	articlesvc "github.com/magabrotheeeer/newsroom-backend/internal/services/article"
	authsvc "github.com/magabrotheeeer/newsroom-backend/internal/services/auth"
	mediasvc "github.com/magabrotheeeer/newsroom-backend/internal/services/media"
	oauthsvc "github.com/magabrotheeeer/newsroom-backend/internal/services/oauth"
	settingssvc "github.com/magabrotheeeer/newsroom-backend/internal/services/settings"
	taxonomysvc "github.com/magabrotheeeer/newsroom-backend/internal/services/taxonomy"
	usersvc "github.com/magabrotheeeer/newsroom-backend/internal/services/user"
	"github.com/magabrotheeeer/newsroom-backend/internal/storage/repository"
)

// Интервал сброса счётчиков просмотров из Redis в базу.
const viewsFlushInterval = time.Minute

// App инкапсулирует зависимости HTTP-приложения.
type App struct {
	server         *http.Server
	logger         *slog.Logger
	db             *repository.Storage
	cache          *cache.Cache
	amqpConn       *amqp.Connection
	amqpCh         *amqp.Channel
	articleService *articlesvc.Service
}

// New создает приложение: подключает зависимости, применяет миграции
// и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
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
	publisher := rabbitmq.NewPublisher(ch)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.AccessTTL, cfg.RefreshTTL)

	authService := authsvc.NewAuthService(db, db, db, jwtMaker, publisher,
		authsvc.LockoutPolicy{
			MaxAttempts:  cfg.Lockout.MaxAttempts,
			LockDuration: cfg.Lockout.LockDuration,
		},
		cfg.RefreshTTL, logger)
	exchanger := oauthsvc.NewExchanger(cfg.OAuth)

	articleService := articlesvc.New(db, cacheRedis, publisher, logger)
	taxonomyService := taxonomysvc.New(db)
	mediaService := mediasvc.New(db)
	settingsService := settingssvc.New(db)
	userService := usersvc.New(db)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:     authService,
		OAuth:    exchanger,
		Article:  articleService,
		Taxonomy: taxonomyService,
		Media:    mediaService,
		Settings: settingsService,
		User:     userService,
		Health:   db,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:         srv,
		logger:         logger,
		db:             db,
		cache:          cacheRedis,
		amqpConn:       conn,
		amqpCh:         ch,
		articleService: articleService,
	}, nil
}

// Run запускает HTTP-сервер и фоновый сброс счётчиков просмотров,
// завершает работу по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	go a.flushViewsLoop(ctx)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)

		// Остатки счётчиков уходят в базу перед закрытием соединений.
		if flushErr := a.articleService.FlushViews(timeoutCtx); flushErr != nil {
			a.logger.Error("failed to flush views on shutdown", sl.Err(flushErr))
		}
		if closeErr := a.amqpCh.Close(); closeErr != nil {
			a.logger.Error("failed to close amqp channel", sl.Err(closeErr))
		}
		if closeErr := a.amqpConn.Close(); closeErr != nil {
			a.logger.Error("failed to close amqp connection", sl.Err(closeErr))
		}
		_ = a.db.DB.Close()
		return err
	}
}

func (a *App) flushViewsLoop(ctx context.Context) {
	ticker := time.NewTicker(viewsFlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := a.articleService.FlushViews(ctx); err != nil {
				a.logger.Error("failed to flush article views", sl.Err(err))
			}
		case <-ctx.Done():
			return
		}
	}
}
