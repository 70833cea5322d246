package payment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultDelay = 1500 * time.Millisecond

// Well-known test card numbers that the simulated gateway always declines.
var declinedCards = map[string]string{
	"4000000000000002": "card declined",
	"4000000000009995": "insufficient funds",
}

// Simulated stands in for a real payment provider. It waits Delay and then
// succeeds, unless the card is a known decline number or ctx ends first.
type Simulated struct {
	Delay time.Duration
	now   func() time.Time
}

func NewSimulated(delay time.Duration) *Simulated {
	if delay < 0 {
		delay = defaultDelay
	}

	return &Simulated{Delay: delay, now: time.Now}
}

func (g *Simulated) Charge(ctx context.Context, req ChargeRequest) (*Receipt, error) {
	if req.Amount < 0 {
		return nil, &Error{Kind: KindInvalid, Reason: "negative amount"}
	}

	if g.Delay > 0 {
		t := time.NewTimer(g.Delay)
		defer t.Stop()

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, &Error{Kind: KindTimeout, Reason: "gateway did not respond in time"}
			}
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	number := strings.ReplaceAll(req.Fields.CardNumber, " ", "")
	if reason, ok := declinedCards[number]; ok {
		return nil, &Error{Kind: KindDeclined, Reason: reason}
	}

	now := time.Now
	if g.now != nil {
		now = g.now
	}

	return &Receipt{
		PaymentID:   "pay_" + uuid.NewString(),
		Amount:      req.Amount,
		ProcessedAt: now().UTC(),
	}, nil
}

func (g *Simulated) Refund(ctx context.Context, paymentID string) error {
	if !strings.HasPrefix(paymentID, "pay_") {
		return &Error{Kind: KindInvalid, Reason: "unknown payment " + paymentID}
	}
	return ctx.Err()
}
