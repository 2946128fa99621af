// Package aiproplatform собирает приложение: хранилище, кеш, брокер,
// сервисы и HTTP-сервер.
package aiproplatform

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/ai-pro-platform/internal/aiprovider/gemini"
	"github.com/magabrotheeeer/ai-pro-platform/internal/cache"
	"github.com/magabrotheeeer/ai-pro-platform/internal/clock"
	"github.com/magabrotheeeer/ai-pro-platform/internal/config"
	libjwt "github.com/magabrotheeeer/ai-pro-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/ai-pro-platform/internal/lib/sl"
	"github.com/magabrotheeeer/ai-pro-platform/internal/migrations"
	"github.com/magabrotheeeer/ai-pro-platform/internal/rabbitmq"
	accessservice "github.com/magabrotheeeer/ai-pro-platform/internal/services/access"
	authservice "github.com/magabrotheeeer/ai-pro-platform/internal/services/auth"
	chatservice "github.com/magabrotheeeer/ai-pro-platform/internal/services/chat"
	paymentservice "github.com/magabrotheeeer/ai-pro-platform/internal/services/payment"
	planservice "github.com/magabrotheeeer/ai-pro-platform/internal/services/plan"
	quotaservice "github.com/magabrotheeeer/ai-pro-platform/internal/services/quota"
	settingsservice "github.com/magabrotheeeer/ai-pro-platform/internal/services/settings"
	subscriptionservice "github.com/magabrotheeeer/ai-pro-platform/internal/services/subscription"
	"github.com/magabrotheeeer/ai-pro-platform/internal/storage"
)

// App — собранное приложение.
type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *storage.Storage
	amqpConn  *amqp.Connection
	quota     *quotaservice.Tracker
	retention int
}

// New инициализирует зависимости и собирает приложение.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}
	if err = db.Seed(ctx); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var amqpConn *amqp.Connection
	var publisher paymentservice.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		amqpConn, err = rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.ConnectRetries, cfg.RabbitMQ.ConnectDelay)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(amqpConn)
		if err != nil {
			return nil, err
		}
		publisher = rabbitmq.NewPublisher(ch)
	}

	clk := clock.New()
	jwtMaker := libjwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	planService := planservice.New(db, cacheRedis, logger)
	ledger := subscriptionservice.NewLedger(db, logger)
	quotaTracker := quotaservice.NewTracker(db, clk, logger)
	accessService := accessservice.New(ledger, planService, quotaTracker, clk, logger)
	paymentService := paymentservice.New(db, planService, ledger, publisher, clk, logger)
	authService := authservice.New(db, planService, ledger, jwtMaker, clk, logger)
	settingsService := settingsservice.New(db, cacheRedis, logger)
	provider := gemini.New(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout, logger)
	chatService := chatservice.New(accessService, provider, clk, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Services{
		JWTMaker: jwtMaker, Clock: clk,
		Auth: authService, Chat: chatService, Access: accessService,
		Plans: planService, Payments: paymentService,
		Subscriptions: ledger, Settings: settingsService, Quota: quotaTracker,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:    srv,
		logger:    logger,
		db:        db,
		amqpConn:  amqpConn,
		quota:     quotaTracker,
		retention: cfg.UsageRetentionDays,
	}, nil
}

// Run запускает HTTP-сервер и фоновую чистку счётчиков; блокируется
// до отмены контекста или ошибки сервера.
func (a *App) Run(ctx context.Context) error {
	go a.pruneLoop(ctx)

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

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", sl.Err(closeErr))
		}
		if a.amqpConn != nil {
			_ = a.amqpConn.Close()
		}
		return err
	}
}

// pruneLoop раз в сутки удаляет счётчики использования старше окна
// хранения. Первая чистка выполняется сразу после старта.
func (a *App) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		if _, err := a.quota.Prune(ctx, a.retention); err != nil {
			a.logger.Error("usage prune failed", sl.Err(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
