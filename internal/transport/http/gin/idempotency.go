package httpgin

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	redisrepo "github.com/kirinyoku/tix-checkout/internal/repository/redis"
)

const idemLockTTL = 60 * time.Second

type Idempotency interface {
	AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error)
	SaveResult(ctx context.Context, key string, status int, jsonPayload string) error
	GetResult(ctx context.Context, key string) (int, string, bool, error)
	Release(ctx context.Context, key string) error
}

// withIdempotency runs fn at most once per (session, Idempotency-Key).
// Successful responses are stored and replayed, failures release the key
// so the client can retry with the same key.
func withIdempotency(
	c *gin.Context,
	idem Idempotency,
	sessionID uuid.UUID,
	fn func() (int, any, error),
) {
	idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if idem == nil || idemKey == "" {
		status, body, err := fn()
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(status, body)
		return
	}

	ctx := c.Request.Context()
	storageKey := redisrepo.KeyIdemPayment(principalFrom(c).UserID, sessionID, idemKey)

	if replayIdempotent(c, idem, storageKey, idemKey) {
		return
	}

	locked, err := idem.AcquireLock(ctx, storageKey, idemLockTTL)
	if err != nil {
		respondErr(c, err)
		return
	}
	if !locked {
		if replayIdempotent(c, idem, storageKey, idemKey) {
			return
		}
		c.Header("Retry-After", "1")
		c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
		return
	}

	status, body, err := fn()
	if err != nil {
		_ = idem.Release(context.WithoutCancel(ctx), storageKey)
		respondErr(c, err)
		return
	}

	payload, err := json.Marshal(body)
	if err != nil {
		_ = idem.Release(context.WithoutCancel(ctx), storageKey)
		respondErr(c, err)
		return
	}

	if err := idem.SaveResult(context.WithoutCancel(ctx), storageKey, status, string(payload)); err != nil {
		_ = c.Error(err)
	}

	c.Header("Idempotency-Key", idemKey)
	c.Data(status, "application/json; charset=utf-8", payload)
}

func replayIdempotent(c *gin.Context, idem Idempotency, storageKey, idemKey string) bool {
	status, payload, ok, _ := idem.GetResult(c.Request.Context(), storageKey)
	if !ok {
		return false
	}
	c.Header("Idempotency-Key", idemKey)
	c.Header("Idempotent-Replay", "true")
	c.Data(status, "application/json; charset=utf-8", []byte(payload))
	return true
}
