package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirinyoku/tix-checkout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulated_Charge_Succeeds(t *testing.T) {
	g := NewSimulated(0)

	r, err := g.Charge(context.Background(), ChargeRequest{
		Reference: "TIX-1",
		Amount:    3150,
		Method:    domain.PaymentCard,
		Fields:    domain.PaymentFields{CardNumber: "4242 4242 4242 4242"},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3150), r.Amount)
	assert.Contains(t, r.PaymentID, "pay_")
	assert.False(t, r.ProcessedAt.IsZero())
}

func TestSimulated_Charge_DeclinedCard(t *testing.T) {
	g := NewSimulated(0)

	_, err := g.Charge(context.Background(), ChargeRequest{
		Amount: 100,
		Method: domain.PaymentCard,
		Fields: domain.PaymentFields{CardNumber: "4000 0000 0000 0002"},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeclined)
	assert.NotErrorIs(t, err, ErrTimeout)

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, KindDeclined, perr.Kind)
}

func TestSimulated_Charge_Timeout(t *testing.T) {
	g := NewSimulated(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.Charge(ctx, ChargeRequest{Amount: 100, Method: domain.PaymentWallet})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestSimulated_Charge_Cancelled(t *testing.T) {
	g := NewSimulated(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Charge(ctx, ChargeRequest{Amount: 100, Method: domain.PaymentWallet})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulated_Charge_NegativeAmount(t *testing.T) {
	_, err := NewSimulated(0).Charge(context.Background(), ChargeRequest{Amount: -1})

	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSimulated_Refund(t *testing.T) {
	g := NewSimulated(0)

	r, err := g.Charge(context.Background(), ChargeRequest{Amount: 100, Method: domain.PaymentWallet})
	require.NoError(t, err)

	assert.NoError(t, g.Refund(context.Background(), r.PaymentID))
	assert.ErrorIs(t, g.Refund(context.Background(), "bogus"), ErrInvalid)
}
