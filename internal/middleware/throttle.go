package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/afr-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	loginThrottleMax    = 10
	loginThrottleWindow = time.Minute
)

// Counter increments a key that expires after ttl.
type Counter interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// LoginThrottle limits login attempts per client IP to 10 per minute.
// Counter failures let the request through.
func LoginThrottle(counter Counter, log *zap.Logger) gin.HandlerFunc {
	return loginThrottle(counter, log, loginThrottleMax, loginThrottleWindow, time.Now)
}

func loginThrottle(counter Counter, log *zap.Logger, max int64, window time.Duration, now func() time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if counter == nil || ip == "" {
			c.Next()
			return
		}

		t := now()
		bucket := t.Unix() / int64(window/time.Second)
		key := fmt.Sprintf("afr:login_throttle:%s:%d", ip, bucket)

		count, err := counter.Incr(c.Request.Context(), key, window+time.Second)
		if err != nil {
			if log != nil {
				log.Warn("login throttle unavailable", zap.Error(err))
			}
			c.Next()
			return
		}

		if count > max {
			windowEnd := time.Unix((bucket+1)*int64(window/time.Second), 0)
			retry := int(windowEnd.Sub(t).Seconds())
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
