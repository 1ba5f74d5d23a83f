package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// Checks lists the probed dependencies. A nil Redis check means Redis is
// not configured and is left out of the report.
type Checks struct {
	Database Check
	Redis    Check
}

type report struct {
	Status   string `json:"status"`
	Database bool   `json:"database"`
	Redis    *bool  `json:"redis,omitempty"`
	Uptime   int64  `json:"uptime"`
}

func RegisterRoutes(rg *gin.RouterGroup, checks Checks) {
	started := time.Now()

	rg.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		r := report{Status: "ok", Uptime: int64(time.Since(started).Seconds())}
		r.Database = checks.Database != nil && checks.Database(ctx) == nil
		healthy := r.Database
		if checks.Redis != nil {
			ok := checks.Redis(ctx) == nil
			r.Redis = &ok
			healthy = healthy && ok
		}

		code := http.StatusOK
		if !healthy {
			r.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, r)
	})

	rg.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
}
