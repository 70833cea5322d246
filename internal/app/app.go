package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tix-checkout/internal/config"
	"github.com/kirinyoku/tix-checkout/internal/events"
	"github.com/kirinyoku/tix-checkout/internal/payment"
	"github.com/kirinyoku/tix-checkout/internal/postgres"
	"github.com/kirinyoku/tix-checkout/internal/redis"
	postgresrepo "github.com/kirinyoku/tix-checkout/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/tix-checkout/internal/repository/redis"
	"github.com/kirinyoku/tix-checkout/internal/service"
	"github.com/kirinyoku/tix-checkout/internal/service/catalog"
	"github.com/kirinyoku/tix-checkout/internal/service/checkout"
	httpgin "github.com/kirinyoku/tix-checkout/internal/transport/http/gin"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	pool       *pgxpool.Pool
	rdb        *goredis.Client
	publisher  message.Publisher
	pubsub     *redisrepo.EventsPubSub
	services   *service.Services
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	pgxPool, err := postgres.New(ctx, postgres.Config{
		DSN:      cfg.Postgres.DSN(),
		MaxConns: cfg.Postgres.MaxConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	if err := postgres.Migrate(ctx, pgxPool); err != nil {
		pgxPool.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	rdb, err := redis.New(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		pgxPool.Close()
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	wmLogger := events.NewSlogAdapter(logger)

	publisher, err := events.NewRedisPublisher(rdb, wmLogger)
	if err != nil {
		pgxPool.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to initialize event publisher: %w", err)
	}

	bus, err := events.NewEventBus(publisher, wmLogger)
	if err != nil {
		pgxPool.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}

	// Initialize repositories
	store := postgresrepo.NewStore(pgxPool)
	cache := redisrepo.NewCache(rdb)
	pubsub := redisrepo.NewEventsPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(
		rdb,
		redisrepo.KeyRateLimitPrefix("promo"),
		cfg.Checkout.PromoRateLimit,
		cfg.Checkout.PromoWindow,
	)
	sessions := redisrepo.NewSessionStore(cache, cfg.Checkout.SessionTTL)
	idempotencyStore := redisrepo.NewIdempotencyStore(rdb, cfg.Checkout.IdempotencyTTL)

	// Initialize services
	services := service.NewServices(service.Deps{
		Store:    store,
		Cache:    cache,
		PubSub:   pubsub,
		Limiter:  limiter,
		Sessions: sessions,
		Gateway:  payment.NewSimulated(cfg.Checkout.PaymentDelay),
		Events:   events.NewPublisher(bus),
		Logger:   logger,
	}, service.Config{
		Catalog: catalog.Config{},
		Checkout: checkout.Config{
			Currency:       cfg.Checkout.Currency,
			Promos:         cfg.Checkout.Promos,
			PaymentTimeout: cfg.Checkout.PaymentTimeout,
		},
	})

	// Initialize Gin router
	router := httpgin.NewRouter(httpgin.Deps{
		Catalog:     services.Catalog,
		Checkout:    services.Checkout,
		Bookings:    services.Bookings,
		Admin:       services.Admin,
		Idempotency: idempotencyStore,
		JWTSecret:   cfg.Auth.JWTSecret,
	}, logger)

	return &App{
		cfg:       cfg,
		logger:    logger,
		pool:      pgxPool,
		rdb:       rdb,
		publisher: publisher,
		pubsub:    pubsub,
		services:  services,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer a.close()

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server
	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Drop cached listings when any instance reports a change
	g.Go(func() error {
		err := a.pubsub.Subscribe(gCtx, func(ctx context.Context, eventID int64, reason string) {
			if err := a.services.Catalog.Invalidate(ctx, eventID); err != nil {
				a.logger.Warn("failed to invalidate catalog cache", "event_id", eventID, "reason", reason, "error", err)
				return
			}
			a.logger.Debug("catalog cache invalidated", "event_id", eventID, "reason", reason)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("events subscription stopped: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}

func (a *App) close() {
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("failed to close event publisher", "error", err)
	}
	if err := a.rdb.Close(); err != nil {
		a.logger.Warn("failed to close redis", "error", err)
	}
	a.pool.Close()
}
