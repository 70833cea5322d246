package checkout

import "github.com/kirinyoku/tix-checkout/internal/domain"

const (
	// ServiceFeePercent is the surcharge applied to every ticket subtotal.
	ServiceFeePercent = 5

	// MaxPerTicketType caps the quantity of a single ticket type per order.
	MaxPerTicketType = 10
)

// percentOf returns round(amount * pct / 100), rounding half up.
func percentOf(amount, pct int64) int64 {
	if amount <= 0 || pct <= 0 {
		return 0
	}
	return (amount*pct + 50) / 100
}

// Subtotal sums unit price times quantity over the selected ticket types.
func Subtotal(types []domain.TicketType, sel domain.Selection) int64 {
	var subtotal int64
	for _, tt := range types {
		if q := sel[tt.ID]; q > 0 {
			subtotal += int64(q) * tt.UnitPrice
		}
	}
	return subtotal
}

// ComputeSummary derives the order totals from the selection and the applied
// promo percentage. The discount never exceeds the subtotal.
func ComputeSummary(types []domain.TicketType, sel domain.Selection, promoPercent int64) domain.OrderSummary {
	subtotal := Subtotal(types, sel)
	fee := percentOf(subtotal, ServiceFeePercent)

	discount := percentOf(subtotal, promoPercent)
	if discount > subtotal {
		discount = subtotal
	}

	return domain.OrderSummary{
		Subtotal:   subtotal,
		ServiceFee: fee,
		Discount:   discount,
		Total:      subtotal + fee - discount,
	}
}

// MaxQuantity is the largest quantity a user may pick for tt.
func MaxQuantity(tt domain.TicketType) int {
	if tt.AvailableQuantity < MaxPerTicketType {
		if tt.AvailableQuantity < 0 {
			return 0
		}
		return tt.AvailableQuantity
	}
	return MaxPerTicketType
}
