package checkout

import (
	"context"

	"github.com/kirinyoku/tix-checkout/internal/domain"
	postgresrepo "github.com/kirinyoku/tix-checkout/internal/repository/postgres"
	"github.com/kirinyoku/tix-checkout/internal/uow"
)

type txBookings struct {
	store *postgresrepo.Store
	uow   *uow.UoW
}

// NewBookingWriter stores bookings through a unit of work on store.
func NewBookingWriter(store *postgresrepo.Store) BookingWriter {
	return &txBookings{store: store, uow: uow.NewUoW(store)}
}

func (w *txBookings) Create(ctx context.Context, b *domain.BookingConfirmation, hooks ...uow.AfterCommit) error {
	return w.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if err := w.store.Bookings().With(tx).Create(ctx, b); err != nil {
			return err
		}

		for _, h := range hooks {
			after(h)
		}

		return nil
	})
}
