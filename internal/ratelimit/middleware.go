package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	limiter "github.com/ulule/limiter/v3"

	"github.com/warung-io/backend-warung/internal/common"
)

// Config describes how to derive a rate limit key.
type Config struct {
	Key func(*http.Request) string
}

// KeyByClientIP is the default key function: one bucket per client address.
func KeyByClientIP(r *http.Request) string {
	return common.ClientIP(r)
}

// Handler enforces rate limits before delegating to the next handler.
// Limiter failures fail open; a broken Redis should not take the API down.
type Handler struct {
	Limiter *limiter.Limiter
	Config  Config
	OnError func(error)
}

// PerMinute builds the rate for the given number of requests per minute.
func PerMinute(n int) limiter.Rate {
	if n < 1 {
		n = 1
	}
	return limiter.Rate{Period: time.Minute, Limit: int64(n)}
}

// Middleware implements the http.Handler middleware interface.
func (h Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		key := KeyByClientIP(r)
		if h.Config.Key != nil {
			key = h.Config.Key(r)
		}
		lctx, err := h.Limiter.Get(r.Context(), key)
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		headers.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			retryAfter := lctx.Reset - time.Now().Unix()
			if retryAfter < 0 {
				retryAfter = 0
			}
			headers.Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
