package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kirinyoku/tix-checkout/internal/domain"
	"github.com/kirinyoku/tix-checkout/internal/repository"
	postgresrepo "github.com/kirinyoku/tix-checkout/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/tix-checkout/internal/repository/redis"
	"github.com/kirinyoku/tix-checkout/internal/uow"
)

type Service struct {
	store    *postgresrepo.Store
	cache    *redisrepo.Cache
	pubsub   *redisrepo.EventsPubSub
	uow      *uow.UoW
	validate *validator.Validate
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, pubsub *redisrepo.EventsPubSub) *Service {
	return &Service{
		store:    store,
		cache:    cache,
		pubsub:   pubsub,
		uow:      uow.NewUoW(store),
		validate: validator.New(),
	}
}

// CreateEvent creates an event record and returns its ID.
//
// Returns:
//   - error: admin.ErrForbidden if p cannot manage listings.
//   - error: admin.ErrInvalidListing if the title or venue is empty or the event ends before it starts.
//   - error: admin.ErrEventConflict if the same event already exists.
func (s *Service) CreateEvent(
	ctx context.Context,
	p domain.Principal,
	title, venue string,
	starts, ends time.Time,
) (int64, error) {
	const op = "service.admin.CreateEvent"

	if !p.CanManageListings() {
		return 0, fmt.Errorf("%s:%w", op, ErrForbidden)
	}

	title, venue = strings.TrimSpace(title), strings.TrimSpace(venue)
	if title == "" || venue == "" || !ends.After(starts) {
		return 0, fmt.Errorf("%s:%w", op, ErrInvalidListing)
	}

	var id int64
	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		var err error
		id, err = s.store.Admin().With(tx).CreateEvent(ctx, title, venue, starts, ends)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s:%w", op, ErrEventConflict)
			}
			return fmt.Errorf("%s:%w", op, err)
		}
		return nil
	})

	return id, err
}

// CreateTicketTypes adds ticket types to an event in one transaction.
// Either every type is created or none is.
//
// Returns:
//   - error: admin.ErrForbidden if p cannot manage listings.
//   - error: admin.ErrInvalidListing if a ticket type fails validation or an id repeats.
//   - error: admin.ErrEventNotFound if the event does not exist.
//   - error: admin.ErrTicketTypeConflict if an id is already used for the event.
func (s *Service) CreateTicketTypes(
	ctx context.Context,
	p domain.Principal,
	eventID int64,
	types []domain.TicketType,
) error {
	const op = "service.admin.CreateTicketTypes"

	if !p.CanManageListings() {
		return fmt.Errorf("%s:%w", op, ErrForbidden)
	}

	if err := s.validateTicketTypes(types); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if _, err := s.store.Query().With(tx).GetEvent(ctx, eventID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s:%w", op, ErrEventNotFound)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		if err := s.store.Admin().With(tx).BatchCreateTicketTypes(ctx, eventID, types); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s:%w", op, ErrTicketTypeConflict)
			}
			return fmt.Errorf("%s:%w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateEvent(ctx, eventID)
			_ = s.pubsub.PublishEventChanged(ctx, eventID, redisrepo.ReasonListing)
		})

		return nil
	})
}

type ticketTypeInput struct {
	ID                string `validate:"required,max=64"`
	Name              string `validate:"required,max=128"`
	UnitPrice         int64  `validate:"gte=0"`
	AvailableQuantity int    `validate:"gte=0"`
}

func (s *Service) validateTicketTypes(types []domain.TicketType) error {
	if len(types) == 0 {
		return fmt.Errorf("%w: no ticket types", ErrInvalidListing)
	}

	seen := make(map[string]struct{}, len(types))
	for _, tt := range types {
		in := ticketTypeInput{
			ID:                strings.TrimSpace(tt.ID),
			Name:              strings.TrimSpace(tt.Name),
			UnitPrice:         tt.UnitPrice,
			AvailableQuantity: tt.AvailableQuantity,
		}

		if err := s.validate.Struct(in); err != nil {
			var ves validator.ValidationErrors
			if errors.As(err, &ves) && len(ves) > 0 {
				return fmt.Errorf("%w: %q: %s failed %s", ErrInvalidListing, tt.ID, ves[0].Field(), ves[0].Tag())
			}
			return fmt.Errorf("%w: %v", ErrInvalidListing, err)
		}

		if _, dup := seen[in.ID]; dup {
			return fmt.Errorf("%w: duplicate ticket type %q", ErrInvalidListing, in.ID)
		}
		seen[in.ID] = struct{}{}
	}

	return nil
}
