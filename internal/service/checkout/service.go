package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	engine "github.com/kirinyoku/tix-checkout/internal/checkout"
	"github.com/kirinyoku/tix-checkout/internal/domain"
	"github.com/kirinyoku/tix-checkout/internal/payment"
	"github.com/kirinyoku/tix-checkout/internal/repository"
	redisrepo "github.com/kirinyoku/tix-checkout/internal/repository/redis"
	"github.com/kirinyoku/tix-checkout/internal/service/catalog"
)

const mutateLockTTL = 5 * time.Second

type Config struct {
	Currency       string
	Promos         engine.PromoTable
	PaymentTimeout time.Duration
}

type Deps struct {
	Sessions SessionStore
	Catalog  Catalog
	Bookings BookingWriter
	Gateway  payment.Gateway
	Limiter  RateLimiter
	Notifier ChangeNotifier
	Events   EventPublisher
	Logger   *slog.Logger
}

type Service struct {
	sessions SessionStore
	catalog  Catalog
	bookings BookingWriter
	gateway  payment.Gateway
	limiter  RateLimiter
	notifier ChangeNotifier
	events   EventPublisher
	logger   *slog.Logger
	cfg      Config
}

func New(deps Deps, cfg Config) *Service {
	if cfg.Currency == "" {
		cfg.Currency = "KES"
	}

	if len(cfg.Promos) == 0 {
		cfg.Promos = engine.DefaultPromoTable()
	}

	if cfg.PaymentTimeout <= 0 {
		cfg.PaymentTimeout = 10 * time.Second
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		sessions: deps.Sessions,
		catalog:  deps.Catalog,
		bookings: deps.Bookings,
		gateway:  deps.Gateway,
		limiter:  deps.Limiter,
		notifier: deps.Notifier,
		events:   deps.Events,
		logger:   logger.With("service", "checkout"),
		cfg:      cfg,
	}
}

// Start opens a checkout session for an event with a snapshot of its ticket types.
//
// Returns:
//   - error: checkout.ErrEventNotFound if the event does not exist.
func (s *Service) Start(ctx context.Context, p domain.Principal, eventID int64) (*engine.Session, error) {
	const op = "service.checkout.Start"

	types, err := s.catalog.ListTicketTypes(ctx, eventID)
	if err != nil {
		if errors.Is(err, catalog.ErrEventNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	sess := engine.NewSession(eventID, p.UserID, types)

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sess, nil
}

// Get returns a session owned by p.
//
// Returns:
//   - error: checkout.ErrSessionNotFound if the session is unknown or expired.
//   - error: checkout.ErrForbidden if the session belongs to another user.
func (s *Service) Get(ctx context.Context, p domain.Principal, id uuid.UUID) (*engine.Session, error) {
	const op = "service.checkout.Get"

	sess, err := s.load(ctx, p, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sess, nil
}

func (s *Service) SelectTickets(
	ctx context.Context,
	p domain.Principal,
	id uuid.UUID,
	ticketTypeID string,
	qty int,
) (*engine.Session, error) {
	const op = "service.checkout.SelectTickets"

	return s.mutate(ctx, op, p, id, func(sess *engine.Session) error {
		return sess.SelectTickets(ticketTypeID, qty)
	})
}

// ApplyPromo applies code to the session and reports whether it matched.
// Attempts are rate limited per user, matched or not.
//
// Returns:
//   - error: *checkout.RateLimitedError wrapping ErrRateLimited when over the limit.
func (s *Service) ApplyPromo(
	ctx context.Context,
	p domain.Principal,
	id uuid.UUID,
	code string,
) (*engine.Session, bool, error) {
	const op = "service.checkout.ApplyPromo"

	if s.limiter != nil {
		d, err := s.limiter.Allow(ctx, p.UserID)
		if err != nil {
			return nil, false, fmt.Errorf("%s:%w", op, err)
		}
		if !d.Allowed {
			return nil, false, fmt.Errorf("%s:%w", op, &RateLimitedError{RetryAfter: d.RetryAfter})
		}
	}

	var applied bool
	sess, err := s.mutate(ctx, op, p, id, func(sess *engine.Session) error {
		var err error
		applied, err = sess.ApplyPromoCode(s.cfg.Promos, code)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	return sess, applied, nil
}

func (s *Service) Continue(ctx context.Context, p domain.Principal, id uuid.UUID) (*engine.Session, error) {
	const op = "service.checkout.Continue"

	return s.mutate(ctx, op, p, id, func(sess *engine.Session) error {
		return sess.Continue()
	})
}

// Back returns to ticket selection and refreshes availability. A failed
// refresh keeps the old snapshot.
func (s *Service) Back(ctx context.Context, p domain.Principal, id uuid.UUID) (*engine.Session, error) {
	const op = "service.checkout.Back"

	return s.mutate(ctx, op, p, id, func(sess *engine.Session) error {
		if err := sess.Back(); err != nil {
			return err
		}

		types, err := s.catalog.ListTicketTypes(ctx, sess.EventID)
		if err != nil {
			s.logger.Warn("refresh ticket types", "event_id", sess.EventID, "error", err)
			return nil
		}
		sess.RefreshTicketTypes(types)

		return nil
	})
}

// Submit charges the session total and stores the booking. When the booking
// cannot be stored the charge is refunded and the session stays in payment.
//
// Returns:
//   - error: wraps checkout.ErrValidation for invalid payment input.
//   - error: wraps payment.ErrDeclined or payment.ErrTimeout for gateway failures.
//   - error: checkout.ErrSoldOut if the tickets ran out while paying.
//   - error: checkout.ErrSessionBusy if another request holds the session.
//   - error: checkout.ErrAlreadyBooked if a booking already exists for the session.
func (s *Service) Submit(
	ctx context.Context,
	p domain.Principal,
	id uuid.UUID,
	method domain.PaymentMethod,
	fields domain.PaymentFields,
) (*domain.BookingConfirmation, error) {
	const op = "service.checkout.Submit"

	if _, err := s.load(ctx, p, id); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	locked, err := s.sessions.Lock(ctx, id, s.cfg.PaymentTimeout+5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s:%w", op, ErrSessionBusy)
	}
	defer func() {
		if err := s.sessions.Unlock(context.WithoutCancel(ctx), id); err != nil {
			s.logger.Warn("unlock session", "session_id", id, "error", err)
		}
	}()

	// Another submission may have confirmed the session before the lock was taken.
	sess, err := s.load(ctx, p, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	payCtx, cancel := context.WithTimeout(ctx, s.cfg.PaymentTimeout)
	defer cancel()

	conf, err := sess.Submit(payCtx, s.gateway, s.cfg.Currency, method, fields)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	err = s.bookings.Create(ctx, conf, func(ctx context.Context) {
		s.afterBooking(ctx, conf)
	})
	if err != nil {
		s.refund(ctx, sess, conf)

		switch {
		case errors.Is(err, repository.ErrSoldOut):
			return nil, fmt.Errorf("%s:%w", op, ErrSoldOut)
		case errors.Is(err, repository.ErrConflict):
			return nil, fmt.Errorf("%s:%w", op, ErrAlreadyBooked)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		s.logger.Error("save confirmed session", "session_id", id, "reference", conf.Reference, "error", err)
	}

	s.logger.Info("booking confirmed",
		"reference", conf.Reference,
		"event_id", conf.EventID,
		"total", conf.Summary.Total,
		"method", conf.Method,
	)

	return conf, nil
}

func (s *Service) afterBooking(ctx context.Context, conf *domain.BookingConfirmation) {
	if err := s.catalog.Invalidate(ctx, conf.EventID); err != nil {
		s.logger.Warn("invalidate catalog", "event_id", conf.EventID, "error", err)
	}

	if s.notifier != nil {
		if err := s.notifier.PublishEventChanged(ctx, conf.EventID, redisrepo.ReasonInventory); err != nil {
			s.logger.Warn("publish event changed", "event_id", conf.EventID, "error", err)
		}
	}

	if s.events != nil {
		if err := s.events.PublishBookingConfirmed(ctx, conf); err != nil {
			s.logger.Error("publish booking confirmed", "reference", conf.Reference, "error", err)
		}
	}
}

// refund reverses the charge and puts the session back into payment with
// fresh availability so the user can adjust the selection.
func (s *Service) refund(ctx context.Context, sess *engine.Session, conf *domain.BookingConfirmation) {
	ctx = context.WithoutCancel(ctx)

	if err := s.gateway.Refund(ctx, conf.PaymentID); err != nil {
		s.logger.Error("refund failed", "payment_id", conf.PaymentID, "reference", conf.Reference, "error", err)
	}

	sess.Reopen()

	if err := s.catalog.Invalidate(ctx, sess.EventID); err != nil {
		s.logger.Warn("invalidate catalog", "event_id", sess.EventID, "error", err)
	}

	if types, err := s.catalog.ListTicketTypes(ctx, sess.EventID); err == nil {
		sess.RefreshTicketTypes(types)
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		s.logger.Warn("save reopened session", "session_id", sess.ID, "error", err)
	}
}

func (s *Service) load(ctx context.Context, p domain.Principal, id uuid.UUID) (*engine.Session, error) {
	sess, err := s.sessions.Load(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if sess.UserID != p.UserID {
		return nil, ErrForbidden
	}

	return sess, nil
}

func (s *Service) mutate(
	ctx context.Context,
	op string,
	p domain.Principal,
	id uuid.UUID,
	fn func(sess *engine.Session) error,
) (*engine.Session, error) {
	// Submit holds the same lock while charging, so a mutation can never
	// overwrite a session that is being confirmed.
	locked, err := s.sessions.Lock(ctx, id, mutateLockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s:%w", op, ErrSessionBusy)
	}
	defer func() {
		if err := s.sessions.Unlock(context.WithoutCancel(ctx), id); err != nil {
			s.logger.Warn("unlock session", "session_id", id, "error", err)
		}
	}()

	sess, err := s.load(ctx, p, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := fn(sess); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sess, nil
}
