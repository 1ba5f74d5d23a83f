package app

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/afr-space/core/internal/config"
	"github.com/gin-contrib/cors"
)

// corsConfig allows credentialed requests from the configured origins.
// Development mode and an empty list accept any origin.
func corsConfig(cfg *config.AppConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	patterns := cfg.AllowedOrigins
	if len(patterns) == 0 || cfg.IsDev() {
		c.AllowOriginFunc = func(string) bool { return true }
		return c
	}
	c.AllowOriginFunc = func(origin string) bool {
		host := originHost(origin)
		for _, p := range patterns {
			if matchOrigin(originHost(p), host) {
				return true
			}
		}
		return false
	}
	return c
}

// originHost returns the host[:port] part of an Origin header.
func originHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}

// matchOrigin supports exact hosts, "*.example.com" and "localhost:*".
func matchOrigin(pattern, host string) bool {
	switch {
	case pattern == host:
		return true
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(host, pattern[1:])
	case strings.HasSuffix(pattern, ":*"):
		return strings.HasPrefix(host, pattern[:len(pattern)-1])
	}
	return false
}
