package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tix-checkout/internal/domain"
)

type AdminRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *AdminRepo) With(db DB) *AdminRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *AdminRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *AdminRepo) CreateEvent(
	ctx context.Context,
	title, venue string,
	starts, ends time.Time,
) (int64, error) {
	const op = "postgres.AdminRepo.CreateEvent"

	db := r.handle()

	var id int64
	if err := db.QueryRow(ctx,
		`INSERT INTO events(title, venue, starts_at, ends_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		title, venue, starts, ends,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return id, nil
}

// BatchCreateTicketTypes inserts ticket types for an event, keeping their order.
// An existing id for the same event is a conflict; an unknown event is not found.
func (r *AdminRepo) BatchCreateTicketTypes(
	ctx context.Context,
	eventID int64,
	types []domain.TicketType,
) error {
	const op = "postgres.AdminRepo.BatchCreateTicketTypes"

	db := r.handle()

	batch := &pgx.Batch{}
	for i, tt := range types {
		perks := tt.Perks
		if perks == nil {
			perks = []string{}
		}

		batch.Queue(
			`INSERT INTO ticket_types(id, event_id, name, description, unit_price, available_quantity, perks, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			tt.ID, eventID, tt.Name, tt.Description, tt.UnitPrice, tt.AvailableQuantity, perks, i,
		)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}
