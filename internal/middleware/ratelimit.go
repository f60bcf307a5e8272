package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/guplink/guplink-api/internal/ratelimit"
	"github.com/guplink/guplink-api/internal/services"
	"github.com/guplink/guplink-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

// RateLimit enforces the fixed-window limit for the given category. It runs
// before authentication, so counters are keyed by client address, and it sets
// the X-RateLimit-* headers on every response, allowed or denied.
func RateLimit(store ratelimit.Store, category ratelimit.Category) drift.HandlerFunc {
	cfg := ratelimit.ConfigFor(category)
	return func(c *drift.Context) {
		clientID := services.ClientIP(c.Request)
		result := store.Increment(ratelimit.CounterKey(category, clientID), cfg)

		header := c.Response.Header()
		header.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		header.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		header.Set("X-RateLimit-Reset", strconv.FormatInt(result.Reset.Unix(), 10))
		header.Set("X-RateLimit-Reset-Time", result.Reset.UTC().Format(time.RFC3339))

		if !result.Allowed {
			retryAfter := int(time.Until(result.Reset).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			header.Set("Retry-After", strconv.Itoa(retryAfter))
			_ = c.JSON(http.StatusTooManyRequests, dto.NewError("rate limit exceeded, try again later"))
			c.Abort()
			return
		}

		c.Next()
	}
}
