package domain

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID     int64     `json:"id"`
	Title  string    `json:"title"`
	Venue  string    `json:"venue"`
	Starts time.Time `json:"starts_at"`
	Ends   time.Time `json:"ends_at"`
}

// TicketType is a purchasable tier of an event. Prices are in minor units.
type TicketType struct {
	ID                string   `json:"id"`
	EventID           int64    `json:"event_id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	UnitPrice         int64    `json:"unit_price"`
	AvailableQuantity int      `json:"available_quantity"`
	Perks             []string `json:"perks"`
}

// Selection maps TicketType.ID to the selected quantity.
// A zero quantity means the ticket type is not selected.
type Selection map[string]int

// Count returns the total number of tickets selected.
func (s Selection) Count() int {
	n := 0
	for _, q := range s {
		if q > 0 {
			n += q
		}
	}
	return n
}

type OrderSummary struct {
	Subtotal   int64 `json:"subtotal"`
	ServiceFee int64 `json:"service_fee"`
	Discount   int64 `json:"discount"`
	Total      int64 `json:"total"`
}

type Step string

const (
	StepSelectingTickets Step = "selecting_tickets"
	StepEnteringPayment  Step = "entering_payment"
	StepConfirmed        Step = "confirmed"
)

type PaymentMethod string

const (
	PaymentCard        PaymentMethod = "card"
	PaymentMobileMoney PaymentMethod = "mobile_money"
	PaymentWallet      PaymentMethod = "wallet"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCard, PaymentMobileMoney, PaymentWallet:
		return true
	}
	return false
}

func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentFields is the raw form input for every payment method.
// Only the fields required by the chosen method are inspected.
type PaymentFields struct {
	CardNumber  string `json:"card_number,omitempty"`
	CardName    string `json:"card_name,omitempty"`
	ExpiryDate  string `json:"expiry_date,omitempty"`
	CVV         string `json:"cvv,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	AcceptTerms bool   `json:"accept_terms"`
}

type BookingItem struct {
	TicketTypeID string `json:"ticket_type_id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	UnitPrice    int64  `json:"unit_price"`
}

// BookingConfirmation is created once per checkout session, on successful payment.
type BookingConfirmation struct {
	Reference string        `json:"reference"`
	SessionID uuid.UUID     `json:"session_id"`
	EventID   int64         `json:"event_id"`
	UserID    string        `json:"user_id"`
	Items     []BookingItem `json:"items"`
	Summary   OrderSummary  `json:"summary"`
	Currency  string        `json:"currency"`
	Method    PaymentMethod `json:"method"`
	PaymentID string        `json:"payment_id"`
	PromoCode string        `json:"promo_code,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Principal is the authenticated caller. It is passed explicitly to services.
type Principal struct {
	UserID string
	Role   string
}

const (
	RoleCustomer  = "customer"
	RoleOrganizer = "organizer"
	RoleAdmin     = "admin"
)

func (p Principal) CanManageListings() bool {
	return p.Role == RoleOrganizer || p.Role == RoleAdmin
}
