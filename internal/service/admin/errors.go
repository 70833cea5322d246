package admin

import (
	"errors"
)

var (
	ErrEventConflict      = errors.New("event already exists")
	ErrTicketTypeConflict = errors.New("ticket type already exists for this event")
	ErrEventNotFound      = errors.New("event not found")
	ErrForbidden          = errors.New("only organizers can manage listings")
	ErrInvalidListing     = errors.New("invalid listing")
)
