package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	engine "github.com/kirinyoku/tix-checkout/internal/checkout"
	"github.com/kirinyoku/tix-checkout/internal/domain"
	redisrepo "github.com/kirinyoku/tix-checkout/internal/repository/redis"
	"github.com/kirinyoku/tix-checkout/internal/uow"
)

type SessionStore interface {
	Save(ctx context.Context, s *engine.Session) error
	Load(ctx context.Context, id uuid.UUID) (*engine.Session, error)
	Lock(ctx context.Context, id uuid.UUID, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, id uuid.UUID) error
}

type Catalog interface {
	ListTicketTypes(ctx context.Context, eventID int64) ([]domain.TicketType, error)
	Invalidate(ctx context.Context, eventID int64) error
}

// BookingWriter stores a booking and runs after once it is committed.
type BookingWriter interface {
	Create(ctx context.Context, b *domain.BookingConfirmation, after ...uow.AfterCommit) error
}

type RateLimiter interface {
	Allow(ctx context.Context, subject string) (redisrepo.Decision, error)
}

type ChangeNotifier interface {
	PublishEventChanged(ctx context.Context, eventID int64, reason string) error
}

type EventPublisher interface {
	PublishBookingConfirmed(ctx context.Context, b *domain.BookingConfirmation) error
}
