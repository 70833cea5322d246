package checkout

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kirinyoku/tix-checkout/internal/domain"
)

var validate = validator.New()

// Field order matters: the first failing field is reported.
type cardInput struct {
	CardNumber  string `validate:"required,len=16,number"`
	CardName    string `validate:"required"`
	ExpiryDate  string `validate:"required"`
	CVV         string `validate:"required"`
	AcceptTerms bool   `validate:"required"`
}

type mobileMoneyInput struct {
	PhoneNumber string `validate:"required"`
	AcceptTerms bool   `validate:"required"`
}

type walletInput struct {
	AcceptTerms bool `validate:"required"`
}

type fieldRule struct {
	name     string
	required string
	invalid  string
}

var fieldRules = map[string]fieldRule{
	"CardNumber":  {name: "card_number", required: "card number is required", invalid: "card number must be 16 digits"},
	"CardName":    {name: "card_name", required: "cardholder name is required"},
	"ExpiryDate":  {name: "expiry_date", required: "expiry date is required"},
	"CVV":         {name: "cvv", required: "cvv is required"},
	"PhoneNumber": {name: "phone_number", required: "phone number is required"},
	"AcceptTerms": {name: "accept_terms", required: "you must accept the terms and conditions"},
}

// ValidatePaymentInput checks the fields required by method and returns a
// *ValidationError for the first rule that fails.
func ValidatePaymentInput(method domain.PaymentMethod, f domain.PaymentFields) error {
	var input any

	switch method {
	case domain.PaymentCard:
		input = cardInput{
			CardNumber:  strings.ReplaceAll(f.CardNumber, " ", ""),
			CardName:    strings.TrimSpace(f.CardName),
			ExpiryDate:  strings.TrimSpace(f.ExpiryDate),
			CVV:         strings.TrimSpace(f.CVV),
			AcceptTerms: f.AcceptTerms,
		}
	case domain.PaymentMobileMoney:
		input = mobileMoneyInput{
			PhoneNumber: strings.TrimSpace(f.PhoneNumber),
			AcceptTerms: f.AcceptTerms,
		}
	case domain.PaymentWallet:
		input = walletInput{AcceptTerms: f.AcceptTerms}
	default:
		return &ValidationError{Field: "method", Reason: "unsupported payment method"}
	}

	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	rule, ok := fieldRules[fe.Field()]
	if !ok {
		return &ValidationError{Field: fe.Field(), Reason: fe.Error()}
	}

	reason := rule.required
	if fe.Tag() != "required" && rule.invalid != "" {
		reason = rule.invalid
	}

	return &ValidationError{Field: rule.name, Reason: reason}
}
