package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromoTable_Lookup(t *testing.T) {
	table := DefaultPromoTable()

	code, pct, ok := table.Lookup("  earlybird10 ")
	require.True(t, ok)
	assert.Equal(t, "EARLYBIRD10", code)
	assert.Equal(t, int64(10), pct)

	_, _, ok = table.Lookup("Vip20")
	assert.True(t, ok)

	_, _, ok = table.Lookup("NOPE")
	assert.False(t, ok)

	_, _, ok = table.Lookup("")
	assert.False(t, ok)
}

func TestParsePromoTable(t *testing.T) {
	table, err := ParsePromoTable("summer15:15, VIP20:20")
	require.NoError(t, err)
	assert.Equal(t, PromoTable{"SUMMER15": 15, "VIP20": 20}, table)

	for _, bad := range []string{"", "NOCOLON", "X:abc", "X:0", "X:101", ":10"} {
		_, err := ParsePromoTable(bad)
		assert.Error(t, err, bad)
	}
}
