package service

import (
	"log/slog"

	"github.com/kirinyoku/tix-checkout/internal/payment"
	postgres "github.com/kirinyoku/tix-checkout/internal/repository/postgres"
	redis "github.com/kirinyoku/tix-checkout/internal/repository/redis"
	"github.com/kirinyoku/tix-checkout/internal/service/admin"
	"github.com/kirinyoku/tix-checkout/internal/service/bookings"
	"github.com/kirinyoku/tix-checkout/internal/service/catalog"
	"github.com/kirinyoku/tix-checkout/internal/service/checkout"
)

type Services struct {
	Catalog  *catalog.Service
	Admin    *admin.Service
	Bookings *bookings.Service
	Checkout *checkout.Service
}

type Config struct {
	Catalog  catalog.Config
	Checkout checkout.Config
}

type Deps struct {
	Store    *postgres.Store
	Cache    *redis.Cache
	PubSub   *redis.EventsPubSub
	Limiter  *redis.SlidingWindowLimiter
	Sessions *redis.SessionStore
	Gateway  payment.Gateway
	Events   checkout.EventPublisher
	Logger   *slog.Logger
}

func NewServices(deps Deps, cfg Config) *Services {
	cat := catalog.New(deps.Store.Query(), deps.Cache, cfg.Catalog)

	return &Services{
		Catalog:  cat,
		Admin:    admin.New(deps.Store, deps.Cache, deps.PubSub),
		Bookings: bookings.New(deps.Store),
		Checkout: checkout.New(checkout.Deps{
			Sessions: deps.Sessions,
			Catalog:  cat,
			Bookings: checkout.NewBookingWriter(deps.Store),
			Gateway:  deps.Gateway,
			Limiter:  deps.Limiter,
			Notifier: deps.PubSub,
			Events:   deps.Events,
			Logger:   deps.Logger,
		}, cfg.Checkout),
	}
}
