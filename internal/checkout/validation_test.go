package checkout

import (
	"errors"
	"testing"

	"github.com/kirinyoku/tix-checkout/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCard() domain.PaymentFields {
	return domain.PaymentFields{
		CardNumber:  "4242 4242 4242 4242",
		CardName:    "Ada Lovelace",
		ExpiryDate:  "12/29",
		CVV:         "123",
		AcceptTerms: true,
	}
}

func TestValidatePaymentInput(t *testing.T) {
	tests := []struct {
		name      string
		method    domain.PaymentMethod
		fields    func() domain.PaymentFields
		wantField string
		wantMsg   string
	}{
		{
			name:   "card ok",
			method: domain.PaymentCard,
			fields: validCard,
		},
		{
			name:   "card fifteen digits",
			method: domain.PaymentCard,
			fields: func() domain.PaymentFields {
				f := validCard()
				f.CardNumber = "4242 4242 4242 424"
				return f
			},
			wantField: "card_number",
			wantMsg:   "card number must be 16 digits",
		},
		{
			name:   "card letters",
			method: domain.PaymentCard,
			fields: func() domain.PaymentFields {
				f := validCard()
				f.CardNumber = "4242 4242 4242 42ab"
				return f
			},
			wantField: "card_number",
			wantMsg:   "card number must be 16 digits",
		},
		{
			name:   "card signed number",
			method: domain.PaymentCard,
			fields: func() domain.PaymentFields {
				f := validCard()
				f.CardNumber = "+424242424242424"
				return f
			},
			wantField: "card_number",
			wantMsg:   "card number must be 16 digits",
		},
		{
			name:   "card missing number",
			method: domain.PaymentCard,
			fields: func() domain.PaymentFields {
				f := validCard()
				f.CardNumber = "   "
				return f
			},
			wantField: "card_number",
			wantMsg:   "card number is required",
		},
		{
			name:   "first failure wins",
			method: domain.PaymentCard,
			fields: func() domain.PaymentFields {
				return domain.PaymentFields{CardNumber: "4242424242424242"}
			},
			wantField: "card_name",
			wantMsg:   "cardholder name is required",
		},
		{
			name:   "card missing cvv",
			method: domain.PaymentCard,
			fields: func() domain.PaymentFields {
				f := validCard()
				f.CVV = ""
				return f
			},
			wantField: "cvv",
		},
		{
			name:   "card terms unchecked",
			method: domain.PaymentCard,
			fields: func() domain.PaymentFields {
				f := validCard()
				f.AcceptTerms = false
				return f
			},
			wantField: "accept_terms",
			wantMsg:   "you must accept the terms and conditions",
		},
		{
			name:   "mobile money ok",
			method: domain.PaymentMobileMoney,
			fields: func() domain.PaymentFields {
				return domain.PaymentFields{PhoneNumber: "+254700000000", AcceptTerms: true}
			},
		},
		{
			name:   "mobile money missing phone",
			method: domain.PaymentMobileMoney,
			fields: func() domain.PaymentFields {
				return domain.PaymentFields{AcceptTerms: true}
			},
			wantField: "phone_number",
			wantMsg:   "phone number is required",
		},
		{
			name:   "wallet ok",
			method: domain.PaymentWallet,
			fields: func() domain.PaymentFields {
				return domain.PaymentFields{AcceptTerms: true}
			},
		},
		{
			name:   "wallet terms unchecked",
			method: domain.PaymentWallet,
			fields: func() domain.PaymentFields {
				return domain.PaymentFields{}
			},
			wantField: "accept_terms",
		},
		{
			name:   "unknown method",
			method: "cash",
			fields: func() domain.PaymentFields {
				return domain.PaymentFields{AcceptTerms: true}
			},
			wantField: "method",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePaymentInput(tt.method, tt.fields())
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Field)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, verr.Reason)
			}
		})
	}
}
