package checkout

import (
	"testing"

	"github.com/kirinyoku/tix-checkout/internal/domain"
	"github.com/stretchr/testify/assert"
)

func fixtureTypes() []domain.TicketType {
	return []domain.TicketType{
		{ID: "general", Name: "General Admission", UnitPrice: 1500, AvailableQuantity: 100},
		{ID: "vip", Name: "VIP", UnitPrice: 5000, AvailableQuantity: 4, Perks: []string{"Lounge access"}},
		{ID: "student", Name: "Student", UnitPrice: 999, AvailableQuantity: 0},
	}
}

func TestComputeSummary(t *testing.T) {
	tests := []struct {
		name  string
		sel   domain.Selection
		promo int64
		want  domain.OrderSummary
	}{
		{
			name: "empty selection",
			sel:  domain.Selection{},
			want: domain.OrderSummary{},
		},
		{
			name: "two general no promo",
			sel:  domain.Selection{"general": 2},
			want: domain.OrderSummary{Subtotal: 3000, ServiceFee: 150, Discount: 0, Total: 3150},
		},
		{
			name:  "two general ten percent",
			sel:   domain.Selection{"general": 2},
			promo: 10,
			want:  domain.OrderSummary{Subtotal: 3000, ServiceFee: 150, Discount: 300, Total: 2850},
		},
		{
			name:  "mixed twenty percent",
			sel:   domain.Selection{"general": 1, "vip": 2},
			promo: 20,
			want:  domain.OrderSummary{Subtotal: 11500, ServiceFee: 575, Discount: 2300, Total: 9775},
		},
		{
			name: "fee rounds half up",
			sel:  domain.Selection{"student": 1},
			// 999 * 5% = 49.95
			want: domain.OrderSummary{Subtotal: 999, ServiceFee: 50, Total: 1049},
		},
		{
			name:  "discount clamped to subtotal",
			sel:   domain.Selection{"general": 1},
			promo: 150,
			want:  domain.OrderSummary{Subtotal: 1500, ServiceFee: 75, Discount: 1500, Total: 75},
		},
		{
			name: "unknown ids ignored",
			sel:  domain.Selection{"ghost": 3},
			want: domain.OrderSummary{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeSummary(fixtureTypes(), tt.sel, tt.promo)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeSummary_Invariants(t *testing.T) {
	types := fixtureTypes()

	for g := 0; g <= 10; g++ {
		for v := 0; v <= 4; v++ {
			for _, pct := range []int64{0, 10, 20} {
				sel := domain.Selection{"general": g, "vip": v}
				s := ComputeSummary(types, sel, pct)

				subtotal := int64(g)*1500 + int64(v)*5000
				assert.Equal(t, subtotal, s.Subtotal)
				assert.Equal(t, (subtotal*5+50)/100, s.ServiceFee)
				assert.Equal(t, (subtotal*pct+50)/100, s.Discount)
				assert.Equal(t, s.Subtotal+s.ServiceFee-s.Discount, s.Total)
				assert.GreaterOrEqual(t, s.Total, int64(0))
			}
		}
	}
}

func TestMaxQuantity(t *testing.T) {
	assert.Equal(t, 10, MaxQuantity(domain.TicketType{AvailableQuantity: 100}))
	assert.Equal(t, 4, MaxQuantity(domain.TicketType{AvailableQuantity: 4}))
	assert.Equal(t, 0, MaxQuantity(domain.TicketType{AvailableQuantity: 0}))
	assert.Equal(t, 0, MaxQuantity(domain.TicketType{AvailableQuantity: -3}))
}
