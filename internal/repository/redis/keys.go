package redis

import (
	"fmt"

	"github.com/google/uuid"
)

const ns = "tixcheckout:v1"

func KeyEventSummary(eventID int64) string {
	return fmt.Sprintf("%s:event:%d:summary", ns, eventID)
}

func KeyTicketTypes(eventID int64) string {
	return fmt.Sprintf("%s:event:%d:ticket-types", ns, eventID)
}

func KeySession(id uuid.UUID) string {
	return fmt.Sprintf("%s:session:%s", ns, id)
}

func KeySessionLock(id uuid.UUID) string {
	return fmt.Sprintf("%s:session:%s:lock", ns, id)
}

// KeyRateLimitPrefix is the limiter prefix for a scope such as "promo".
func KeyRateLimitPrefix(scope string) string {
	return fmt.Sprintf("%s:rl:%s", ns, scope)
}

// KeyIdemPayment is scoped to the caller so a stored confirmation is only
// replayed to the user who paid.
func KeyIdemPayment(userID string, sessionID uuid.UUID, idemKey string) string {
	return fmt.Sprintf("%s:idem:payment:%s:%s:%s", ns, userID, sessionID, idemKey)
}

func ChannelEventsChanged() string {
	return ns + ":events:changed"
}
