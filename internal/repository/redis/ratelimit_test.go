package redis

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecision(t *testing.T) {
	d, err := parseDecision([]any{int64(0), int64(10), int64(1500)})
	require.NoError(t, err)

	assert.False(t, d.Allowed)
	assert.Equal(t, int64(10), d.Current)
	assert.Equal(t, 1500*time.Millisecond, d.RetryAfter)

	d, err = parseDecision([]any{int64(1), "3", int64(0)})
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, int64(3), d.Current)
}

func TestParseDecision_BadResult(t *testing.T) {
	_, err := parseDecision([]any{int64(1)})
	assert.Error(t, err)

	_, err = parseDecision("OK")
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "tixcheckout:v1:event:7:ticket-types", KeyTicketTypes(7))
	assert.Equal(t, "tixcheckout:v1:rl:promo", KeyRateLimitPrefix("promo"))

	id := uuid.MustParse("6f1c2a8e-3b0d-4c52-9a57-0d3e5b7f9a11")
	assert.Equal(t,
		"tixcheckout:v1:idem:payment:u1:6f1c2a8e-3b0d-4c52-9a57-0d3e5b7f9a11:k1",
		KeyIdemPayment("u1", id, "k1"),
	)
	assert.NotEqual(t, KeyIdemPayment("u1", id, "k1"), KeyIdemPayment("u2", id, "k1"))
}
