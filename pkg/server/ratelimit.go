package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/hirotachi/genie-cli-chat/pkg/utils"
)

// RateLimiter counts requests per client IP in fixed windows stored in Redis.
type RateLimiter struct {
	client *redis.Client
	logger zerolog.Logger
	now    func() time.Time
}

func NewRateLimiter(client *redis.Client, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{client: client, logger: logger, now: time.Now}
}

// Limit allows requests per window for each IP. Redis failures let the request through.
func (rl *RateLimiter) Limit(name string, requests int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := rl.now()
			slot := now.UnixNano() / int64(window)
			key := fmt.Sprintf("%s:%s:%s:%d", utils.RedisRateLimitPrefix, name, clientIP(r), slot)

			pipe := rl.client.TxPipeline()
			incr := pipe.Incr(r.Context(), key)
			pipe.Expire(r.Context(), key, window)
			if _, err := pipe.Exec(r.Context()); err != nil {
				rl.logger.Warn().Err(err).Str("key", key).Msg("rate limit check failed")
				next.ServeHTTP(w, r)
				return
			}

			remaining := int64(requests) - incr.Val()
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(requests))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if incr.Val() > int64(requests) {
				reset := time.Unix(0, (slot+1)*int64(window))
				retryAfter := int(reset.Sub(now).Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				rateLimitHits.WithLabelValues(name).Inc()
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
