package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTicketType = errors.New("unknown ticket type")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrNoTicketsSelected = errors.New("no tickets selected")
	ErrInvalidStep       = errors.New("action not allowed at this step")
	ErrValidation        = errors.New("validation error")
)

// ValidationError reports the first payment rule that failed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
