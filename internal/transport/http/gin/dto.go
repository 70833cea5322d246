package httpgin

import (
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tix-checkout/internal/checkout"
	"github.com/kirinyoku/tix-checkout/internal/domain"
)

type StartCheckoutRequest struct {
	EventID int64 `json:"event_id" binding:"required,gt=0"`
}

type SelectTicketsRequest struct {
	TicketTypeID string `json:"ticket_type_id" binding:"required"`
	Quantity     *int   `json:"quantity" binding:"required"`
}

type ApplyPromoRequest struct {
	Code string `json:"code" binding:"required"`
}

type PaymentRequest struct {
	Method      string `json:"method" binding:"required"`
	CardNumber  string `json:"card_number"`
	CardName    string `json:"card_name"`
	ExpiryDate  string `json:"expiry_date"`
	CVV         string `json:"cvv"`
	PhoneNumber string `json:"phone_number"`
	AcceptTerms bool   `json:"accept_terms"`
}

func (r PaymentRequest) fields() domain.PaymentFields {
	return domain.PaymentFields{
		CardNumber:  r.CardNumber,
		CardName:    r.CardName,
		ExpiryDate:  r.ExpiryDate,
		CVV:         r.CVV,
		PhoneNumber: r.PhoneNumber,
		AcceptTerms: r.AcceptTerms,
	}
}

type CreateEventRequest struct {
	Title    string `json:"title" binding:"required"`
	Venue    string `json:"venue" binding:"required"`
	StartsAt string `json:"starts_at" binding:"required"`
	EndsAt   string `json:"ends_at" binding:"required"`
}

type CreateTicketTypesRequest struct {
	TicketTypes []TicketTypeInput `json:"ticket_types" binding:"required,min=1,dive"`
}

type TicketTypeInput struct {
	ID                string   `json:"id" binding:"required"`
	Name              string   `json:"name" binding:"required"`
	Description       string   `json:"description"`
	UnitPrice         int64    `json:"unit_price" binding:"gte=0"`
	AvailableQuantity int      `json:"available_quantity" binding:"gte=0"`
	Perks             []string `json:"perks"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type TicketTypeView struct {
	domain.TicketType
	Selected    int `json:"selected"`
	MaxQuantity int `json:"max_quantity"`
}

type SessionResponse struct {
	ID           uuid.UUID                   `json:"id"`
	EventID      int64                       `json:"event_id"`
	Step         domain.Step                 `json:"step"`
	TicketTypes  []TicketTypeView            `json:"ticket_types"`
	TicketCount  int                         `json:"ticket_count"`
	PromoCode    string                      `json:"promo_code,omitempty"`
	Summary      domain.OrderSummary         `json:"summary"`
	CanContinue  bool                        `json:"can_continue"`
	Confirmation *domain.BookingConfirmation `json:"confirmation,omitempty"`
}

func newSessionResponse(s *checkout.Session) SessionResponse {
	views := make([]TicketTypeView, 0, len(s.TicketTypes))
	for _, tt := range s.TicketTypes {
		views = append(views, TicketTypeView{
			TicketType:  tt,
			Selected:    s.Selection[tt.ID],
			MaxQuantity: checkout.MaxQuantity(tt),
		})
	}

	count := s.Selection.Count()

	return SessionResponse{
		ID:           s.ID,
		EventID:      s.EventID,
		Step:         s.Step,
		TicketTypes:  views,
		TicketCount:  count,
		PromoCode:    s.PromoCode,
		Summary:      s.Summary(),
		CanContinue:  s.Step == domain.StepSelectingTickets && count > 0,
		Confirmation: s.Confirmation,
	}
}

type ApplyPromoResponse struct {
	Applied bool            `json:"applied"`
	Message string          `json:"message"`
	Session SessionResponse `json:"session"`
}

type CreateEventResponse struct {
	EventID int64 `json:"event_id"`
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
