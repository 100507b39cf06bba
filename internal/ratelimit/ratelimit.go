package ratelimit

import (
	"fmt"
	"net/http"
	"time"

	"Ticketing/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// Limiter caps requests per client address over a fixed window, counted in
// Redis. Requests beyond the cap are rejected immediately, never queued.
type Limiter struct {
	rdb    *redis.Client
	max    int64
	window time.Duration
}

// New returns a Limiter allowing max requests per window.
func New(rdb *redis.Client, max int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, max: int64(max), window: window}
}

// Middleware enforces the limit. Redis failures fail open: the limiter never
// takes the API down with it.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyPrefix + c.ClientIP()

		// The TTL is armed in the same transaction as the increment; NX keeps
		// a live window from being extended and re-arms a key left without a
		// TTL by an interrupted earlier increment.
		pipe := l.rdb.TxPipeline()
		incr := pipe.Incr(c.Request.Context(), key)
		pipe.ExpireNX(c.Request.Context(), key, l.window)
		if _, err := pipe.Exec(c.Request.Context()); err != nil {
			c.Next()
			return
		}
		if incr.Val() > l.max {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.RateLimitResponse{
				Error:      "Too many requests from this IP, please try again later.",
				RetryAfter: humanWindow(l.window),
			})
			return
		}
		c.Next()
	}
}

func humanWindow(d time.Duration) string {
	if d < time.Minute {
		return plural(int(d.Seconds()), "second")
	}
	// Round partial minutes up so the hint never undershoots the window.
	return plural(int((d + time.Minute - 1) / time.Minute), "minute")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
