package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tix-checkout/internal/domain"
)

type Header struct {
	ID             string    `json:"id"`
	PublishedAt    time.Time `json:"published_at"`
	IdempotencyKey string    `json:"idempotency_key"`
}

// NewHeader keys the event by key so consumers can drop redeliveries.
func NewHeader(key string) Header {
	if key == "" {
		key = uuid.NewString()
	}
	return Header{
		ID:             uuid.NewString(),
		PublishedAt:    time.Now().UTC(),
		IdempotencyKey: key,
	}
}

type BookingConfirmed_v1 struct {
	Header Header `json:"header"`

	Reference string               `json:"reference"`
	EventID   int64                `json:"event_id"`
	UserID    string               `json:"user_id"`
	Items     []domain.BookingItem `json:"items"`
	Total     int64                `json:"total"`
	Currency  string               `json:"currency"`
	Method    string               `json:"method"`
	PaymentID string               `json:"payment_id"`
	BookedAt  time.Time            `json:"booked_at"`
}

func NewBookingConfirmed(b *domain.BookingConfirmation) BookingConfirmed_v1 {
	return BookingConfirmed_v1{
		Header:    NewHeader(b.Reference),
		Reference: b.Reference,
		EventID:   b.EventID,
		UserID:    b.UserID,
		Items:     b.Items,
		Total:     b.Summary.Total,
		Currency:  b.Currency,
		Method:    b.Method.String(),
		PaymentID: b.PaymentID,
		BookedAt:  b.CreatedAt,
	}
}
