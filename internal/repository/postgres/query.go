package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tix-checkout/internal/domain"
)

type QueryRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *QueryRepo) With(db DB) *QueryRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *QueryRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// GetEvent retrieves an event by its ID.
//
// Returns:
//   - *domain.Event: the event when found.
//   - error: repository.ErrNotFound if the event is not found.
func (r *QueryRepo) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	const op = "postgres.QueryRepo.GetEvent"

	db := r.handle()

	var e domain.Event
	err := db.QueryRow(ctx,
		`SELECT id, title, venue, starts_at, ends_at
		 FROM events WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Title, &e.Venue, &e.Starts, &e.Ends)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &e, nil
}

// ListEvents lists events ordered by start time.
func (r *QueryRepo) ListEvents(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	const op = "postgres.QueryRepo.ListEvents"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, title, venue, starts_at, ends_at
		 FROM events
		 ORDER BY starts_at, id
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	out := make([]domain.Event, 0)
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Venue, &e.Starts, &e.Ends); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// ListTicketTypes lists the ticket types of an event in display order.
// An unknown event yields an empty list.
func (r *QueryRepo) ListTicketTypes(ctx context.Context, eventID int64) ([]domain.TicketType, error) {
	const op = "postgres.QueryRepo.ListTicketTypes"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id, event_id, name, description, unit_price, available_quantity, perks
		 FROM ticket_types
		 WHERE event_id = $1
		 ORDER BY position, id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	out := make([]domain.TicketType, 0)
	for rows.Next() {
		var tt domain.TicketType

		if err := rows.Scan(
			&tt.ID,
			&tt.EventID,
			&tt.Name,
			&tt.Description,
			&tt.UnitPrice,
			&tt.AvailableQuantity,
			&tt.Perks,
		); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, tt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

const bookingColumns = `reference, session_id, event_id, user_id,
	subtotal, service_fee, discount, total,
	currency, method, payment_id, promo_code, created_at`

func scanBooking(row interface{ Scan(dest ...any) error }) (*domain.BookingConfirmation, error) {
	var b domain.BookingConfirmation
	var method string

	if err := row.Scan(
		&b.Reference,
		&b.SessionID,
		&b.EventID,
		&b.UserID,
		&b.Summary.Subtotal,
		&b.Summary.ServiceFee,
		&b.Summary.Discount,
		&b.Summary.Total,
		&b.Currency,
		&method,
		&b.PaymentID,
		&b.PromoCode,
		&b.CreatedAt,
	); err != nil {
		return nil, err
	}

	b.Method = domain.PaymentMethod(method)

	return &b, nil
}

// GetBooking retrieves a booking with its items.
//
// Returns:
//   - *domain.BookingConfirmation: the booking when found.
//   - error: repository.ErrNotFound if no booking has that reference.
func (r *QueryRepo) GetBooking(ctx context.Context, reference string) (*domain.BookingConfirmation, error) {
	const op = "postgres.QueryRepo.GetBooking"

	db := r.handle()

	b, err := scanBooking(db.QueryRow(ctx,
		`SELECT `+bookingColumns+`
		 FROM bookings
		 WHERE reference = $1`,
		reference,
	))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	items, err := r.listItems(ctx, db, b.Reference)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	b.Items = items

	return b, nil
}

// ListBookingsByUser lists a user's bookings, newest first, without items.
func (r *QueryRepo) ListBookingsByUser(
	ctx context.Context,
	userID string,
	limit, offset int,
) ([]domain.BookingConfirmation, error) {
	const op = "postgres.QueryRepo.ListBookingsByUser"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT `+bookingColumns+`
		 FROM bookings
		 WHERE user_id = $1
		 ORDER BY created_at DESC, reference
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	out := make([]domain.BookingConfirmation, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func (r *QueryRepo) listItems(ctx context.Context, db DB, reference string) ([]domain.BookingItem, error) {
	const op = "postgres.QueryRepo.listItems"

	rows, err := db.Query(ctx,
		`SELECT ticket_type_id, name, quantity, unit_price
		 FROM booking_items
		 WHERE reference = $1
		 ORDER BY position`,
		reference,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var items []domain.BookingItem
	for rows.Next() {
		var it domain.BookingItem
		if err := rows.Scan(&it.TicketTypeID, &it.Name, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}

		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return items, nil
}
