package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/tix-checkout/internal/domain"
)

var (
	ErrDeclined = errors.New("payment declined")
	ErrTimeout  = errors.New("payment timed out")
	ErrInvalid  = errors.New("invalid charge request")
)

// Gateway charges a payment method. Implementations must honour ctx cancellation.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*Receipt, error)
	// Refund reverses a successful charge in full.
	Refund(ctx context.Context, paymentID string) error
}

type ChargeRequest struct {
	Reference string
	Amount    int64
	Currency  string
	Method    domain.PaymentMethod
	Fields    domain.PaymentFields
}

type Receipt struct {
	PaymentID   string
	Amount      int64
	ProcessedAt time.Time
}

type Kind string

const (
	KindDeclined Kind = "declined"
	KindTimeout  Kind = "timeout"
	KindInvalid  Kind = "invalid"
)

// Error is returned by gateways for every failed charge.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("payment %s: %s", e.Kind, e.Reason)
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrDeclined:
		return e.Kind == KindDeclined
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrInvalid:
		return e.Kind == KindInvalid
	}
	return false
}
