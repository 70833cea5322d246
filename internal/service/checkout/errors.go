package checkout

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrSessionNotFound = errors.New("checkout session not found")
	ErrForbidden       = errors.New("checkout session belongs to another user")
	ErrEventNotFound   = errors.New("event not found")
	ErrSoldOut         = errors.New("not enough tickets left")
	ErrRateLimited     = errors.New("too many promo code attempts")
	ErrSessionBusy     = errors.New("checkout session is busy")
	ErrAlreadyBooked   = errors.New("checkout session was already booked")
)

// RateLimitedError tells the caller when to try again.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s, retry in %s", ErrRateLimited, e.RetryAfter)
}

func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}
