package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirinyoku/tix-checkout/internal/domain"
	"github.com/kirinyoku/tix-checkout/internal/repository"
	postgresrepo "github.com/kirinyoku/tix-checkout/internal/repository/postgres"
)

const (
	defaultPage = 20
	maxPage     = 100
)

type Service struct {
	store *postgresrepo.Store
}

func New(store *postgresrepo.Store) *Service {
	return &Service{store: store}
}

// GetBooking retrieves a booking with its items. Bookings of other users are
// reported as not found unless p is an admin.
func (s *Service) GetBooking(ctx context.Context, p domain.Principal, reference string) (*domain.BookingConfirmation, error) {
	const op = "service.bookings.GetBooking"

	b, err := s.store.Query().GetBooking(ctx, reference)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrBookingNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if !canSee(p, b) {
		return nil, fmt.Errorf("%s:%w", op, ErrBookingNotFound)
	}

	return b, nil
}

// ListBookings lists p's own bookings, newest first.
func (s *Service) ListBookings(ctx context.Context, p domain.Principal, limit, offset int) ([]domain.BookingConfirmation, error) {
	const op = "service.bookings.ListBookings"

	limit, offset = page(limit, offset)

	out, err := s.store.Query().ListBookingsByUser(ctx, p.UserID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func canSee(p domain.Principal, b *domain.BookingConfirmation) bool {
	return p.Role == domain.RoleAdmin || (p.UserID != "" && p.UserID == b.UserID)
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPage
	}
	if limit > maxPage {
		limit = maxPage
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
