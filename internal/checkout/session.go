package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tix-checkout/internal/domain"
	"github.com/kirinyoku/tix-checkout/internal/payment"
	"github.com/lithammer/shortuuid/v3"
)

// Session is one user's walk through the checkout wizard:
//
//	SelectingTickets -> EnteringPayment -> Confirmed
//
// EnteringPayment may go back to SelectingTickets. Confirmed is terminal.
// A Session is not safe for concurrent use.
type Session struct {
	ID           uuid.UUID                   `json:"id"`
	EventID      int64                       `json:"event_id"`
	UserID       string                      `json:"user_id"`
	Step         domain.Step                 `json:"step"`
	TicketTypes  []domain.TicketType         `json:"ticket_types"`
	Selection    domain.Selection            `json:"selection"`
	PromoCode    string                      `json:"promo_code,omitempty"`
	PromoPercent int64                       `json:"promo_percent,omitempty"`
	Confirmation *domain.BookingConfirmation `json:"confirmation,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
}

func NewSession(eventID int64, userID string, types []domain.TicketType) *Session {
	cp := make([]domain.TicketType, len(types))
	copy(cp, types)

	return &Session{
		ID:          uuid.New(),
		EventID:     eventID,
		UserID:      userID,
		Step:        domain.StepSelectingTickets,
		TicketTypes: cp,
		Selection:   domain.Selection{},
		CreatedAt:   time.Now().UTC(),
	}
}

func (s *Session) ticketType(id string) (domain.TicketType, bool) {
	for _, tt := range s.TicketTypes {
		if tt.ID == id {
			return tt, true
		}
	}
	return domain.TicketType{}, false
}

// SelectTickets overwrites the quantity for ticketID.
func (s *Session) SelectTickets(ticketID string, qty int) error {
	const op = "checkout.Session.SelectTickets"

	if s.Step != domain.StepSelectingTickets {
		return fmt.Errorf("%s:%w", op, ErrInvalidStep)
	}

	tt, ok := s.ticketType(ticketID)
	if !ok {
		return fmt.Errorf("%s:%w", op, ErrUnknownTicketType)
	}

	if qty < 0 || qty > MaxQuantity(tt) {
		return fmt.Errorf("%s:%w: %d not in [0, %d]", op, ErrInvalidQuantity, qty, MaxQuantity(tt))
	}

	if s.Selection == nil {
		s.Selection = domain.Selection{}
	}

	if qty == 0 {
		delete(s.Selection, ticketID)
		return nil
	}

	s.Selection[ticketID] = qty

	return nil
}

// ApplyPromoCode applies code if it is in table and reports whether it matched.
// A code that does not match leaves any earlier promo in place.
func (s *Session) ApplyPromoCode(table PromoTable, code string) (bool, error) {
	const op = "checkout.Session.ApplyPromoCode"

	if s.Step == domain.StepConfirmed {
		return false, fmt.Errorf("%s:%w", op, ErrInvalidStep)
	}

	normalized, pct, ok := table.Lookup(code)
	if !ok {
		return false, nil
	}

	s.PromoCode = normalized
	s.PromoPercent = pct

	return true, nil
}

// Summary is recomputed on every call.
func (s *Session) Summary() domain.OrderSummary {
	return ComputeSummary(s.TicketTypes, s.Selection, s.PromoPercent)
}

// Continue moves from ticket selection to payment.
func (s *Session) Continue() error {
	const op = "checkout.Session.Continue"

	if s.Step != domain.StepSelectingTickets {
		return fmt.Errorf("%s:%w", op, ErrInvalidStep)
	}

	if s.Selection.Count() == 0 {
		return fmt.Errorf("%s:%w", op, ErrNoTicketsSelected)
	}

	s.Step = domain.StepEnteringPayment

	return nil
}

// Back returns to ticket selection, keeping the selection and the promo.
func (s *Session) Back() error {
	const op = "checkout.Session.Back"

	if s.Step != domain.StepEnteringPayment {
		return fmt.Errorf("%s:%w", op, ErrInvalidStep)
	}

	s.Step = domain.StepSelectingTickets

	return nil
}

// Items lists the selected ticket types in catalog order.
func (s *Session) Items() []domain.BookingItem {
	var items []domain.BookingItem
	for _, tt := range s.TicketTypes {
		if q := s.Selection[tt.ID]; q > 0 {
			items = append(items, domain.BookingItem{
				TicketTypeID: tt.ID,
				Name:         tt.Name,
				Quantity:     q,
				UnitPrice:    tt.UnitPrice,
			})
		}
	}
	return items
}

// Submit validates the payment input, charges the gateway and, on success,
// moves the session to Confirmed. On failure the session stays in
// EnteringPayment so the user can correct the input and retry.
func (s *Session) Submit(
	ctx context.Context,
	gw payment.Gateway,
	currency string,
	method domain.PaymentMethod,
	fields domain.PaymentFields,
) (*domain.BookingConfirmation, error) {
	const op = "checkout.Session.Submit"

	if s.Step != domain.StepEnteringPayment {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidStep)
	}

	if s.Selection.Count() == 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrNoTicketsSelected)
	}

	if err := ValidatePaymentInput(method, fields); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	summary := s.Summary()
	reference := NewReference()

	receipt, err := gw.Charge(ctx, payment.ChargeRequest{
		Reference: reference,
		Amount:    summary.Total,
		Currency:  currency,
		Method:    method,
		Fields:    fields,
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	conf := &domain.BookingConfirmation{
		Reference: reference,
		SessionID: s.ID,
		EventID:   s.EventID,
		UserID:    s.UserID,
		Items:     s.Items(),
		Summary:   summary,
		Currency:  currency,
		Method:    method,
		PaymentID: receipt.PaymentID,
		PromoCode: s.PromoCode,
		CreatedAt: receipt.ProcessedAt,
	}

	s.Confirmation = conf
	s.Step = domain.StepConfirmed

	return conf, nil
}

// Reopen undoes a confirmation whose charge was refunded because the
// booking could not be stored.
func (s *Session) Reopen() {
	if s.Step != domain.StepConfirmed {
		return
	}
	s.Confirmation = nil
	s.Step = domain.StepEnteringPayment
}

// RefreshTicketTypes replaces the ticket type snapshot and clamps the
// selection to the new limits. Types that disappeared are deselected.
func (s *Session) RefreshTicketTypes(types []domain.TicketType) {
	cp := make([]domain.TicketType, len(types))
	copy(cp, types)
	s.TicketTypes = cp

	for id, q := range s.Selection {
		tt, ok := s.ticketType(id)
		if !ok || MaxQuantity(tt) == 0 {
			delete(s.Selection, id)
			continue
		}
		if q > MaxQuantity(tt) {
			s.Selection[id] = MaxQuantity(tt)
		}
	}
}

// NewReference returns a booking reference such as "TIX-7GQ2KX9MWA".
func NewReference() string {
	return "TIX-" + strings.ToUpper(shortuuid.New()[:10])
}
