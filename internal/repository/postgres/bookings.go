package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tix-checkout/internal/domain"
	"github.com/kirinyoku/tix-checkout/internal/repository"
)

type BookingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *BookingRepo) With(db DB) *BookingRepo {
	cp := *r
	cp.db = db
	return &cp
}

// Create stores a confirmed booking and takes its tickets out of inventory.
// Outside of With it runs in its own serializable transaction.
//
// Returns:
//   - error: repository.ErrSoldOut if any ticket type has fewer tickets left than booked.
//   - error: repository.ErrConflict if the reference or the session was already booked.
//   - error: repository.ErrNotFound if the event or a ticket type does not exist.
func (r *BookingRepo) Create(ctx context.Context, b *domain.BookingConfirmation) error {
	const op = "postgres.BookingRepo.Create"

	if r.db != nil {
		if err := r.createCore(ctx, r.db, b); err != nil {
			return fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		return nil
	}

	tx, err := r.pool.BeginTx(ctx, defaultTxOptions())
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer tx.Rollback(ctx)

	if err := r.createCore(ctx, tx, b); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *BookingRepo) createCore(ctx context.Context, db DB, b *domain.BookingConfirmation) error {
	const op = "postgres.BookingRepo.createCore"

	if len(b.Items) == 0 {
		return fmt.Errorf("%s: booking %s has no items", op, b.Reference)
	}

	if _, err := db.Exec(ctx,
		`INSERT INTO bookings(`+bookingColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		b.Reference, b.SessionID, b.EventID, b.UserID,
		b.Summary.Subtotal, b.Summary.ServiceFee, b.Summary.Discount, b.Summary.Total,
		b.Currency, b.Method.String(), b.PaymentID, b.PromoCode, b.CreatedAt,
	); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	batch := &pgx.Batch{}
	for _, it := range b.Items {
		batch.Queue(
			`UPDATE ticket_types
			 SET available_quantity = available_quantity - $3
			 WHERE event_id = $1 AND id = $2 AND available_quantity >= $3`,
			b.EventID, it.TicketTypeID, it.Quantity,
		)
	}

	br := db.SendBatch(ctx, batch)
	for _, it := range b.Items {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		if tag.RowsAffected() != 1 {
			_ = br.Close()
			return fmt.Errorf("%s: %s:%w", op, it.TicketTypeID, repository.ErrSoldOut)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	items := &pgx.Batch{}
	for i, it := range b.Items {
		items.Queue(
			`INSERT INTO booking_items(reference, ticket_type_id, name, quantity, unit_price, position)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			b.Reference, it.TicketTypeID, it.Name, it.Quantity, it.UnitPrice, i,
		)
	}
	if err := db.SendBatch(ctx, items).Close(); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}
