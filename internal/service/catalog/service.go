package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/tix-checkout/internal/domain"
	"github.com/kirinyoku/tix-checkout/internal/repository"
	redisrepo "github.com/kirinyoku/tix-checkout/internal/repository/redis"
)

type Config struct {
	EventSummaryTTL time.Duration
	TicketTypesTTL  time.Duration
	DefaultPage     int
	MaxPage         int
}

// Store reads listings from the database. *postgres.QueryRepo implements it.
type Store interface {
	GetEvent(ctx context.Context, id int64) (*domain.Event, error)
	ListEvents(ctx context.Context, limit, offset int) ([]domain.Event, error)
	ListTicketTypes(ctx context.Context, eventID int64) ([]domain.TicketType, error)
}

type Service struct {
	store Store
	cache *redisrepo.Cache
	cfg   Config
}

func New(store Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.EventSummaryTTL <= 0 {
		cfg.EventSummaryTTL = 60 * time.Second
	}

	if cfg.TicketTypesTTL <= 0 {
		cfg.TicketTypesTTL = 15 * time.Second
	}

	if cfg.DefaultPage <= 0 {
		cfg.DefaultPage = 20
	}

	if cfg.MaxPage <= 0 {
		cfg.MaxPage = 100
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
	}
}

// GetEvent retrieves an event by its ID through the cache.
//
// Returns:
//   - error: catalog.ErrEventNotFound if the event is not found.
func (s *Service) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	const op = "service.catalog.GetEvent"

	event, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyEventSummary(id),
		s.cfg.EventSummaryTTL,
		func(ctx context.Context) (domain.Event, error) {
			e, err := s.store.GetEvent(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return domain.Event{}, ErrEventNotFound
				}

				return domain.Event{}, err
			}

			return *e, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &event, nil
}

func (s *Service) ListEvents(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	const op = "service.catalog.ListEvents"

	if limit <= 0 {
		limit = s.cfg.DefaultPage
	}

	if limit > s.cfg.MaxPage {
		limit = s.cfg.MaxPage
	}

	if offset < 0 {
		offset = 0
	}

	events, err := s.store.ListEvents(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return events, nil
}

// ListTicketTypes returns the ticket types of an event with their current
// availability. The short TTL bounds how stale availability can get.
//
// Returns:
//   - error: catalog.ErrEventNotFound if the event is not found.
func (s *Service) ListTicketTypes(ctx context.Context, eventID int64) ([]domain.TicketType, error) {
	const op = "service.catalog.ListTicketTypes"

	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	types, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyTicketTypes(eventID),
		s.cfg.TicketTypesTTL,
		func(ctx context.Context) ([]domain.TicketType, error) {
			return s.store.ListTicketTypes(ctx, eventID)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return types, nil
}

// Invalidate drops the cached views of an event.
func (s *Service) Invalidate(ctx context.Context, eventID int64) error {
	const op = "service.catalog.Invalidate"

	if err := s.cache.InvalidateEvent(ctx, eventID); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
