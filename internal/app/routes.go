package app

import (
	"context"
	"net/http"
	"time"

	"github.com/afr-space/core/internal/database"
	"github.com/afr-space/core/internal/middleware"
	"github.com/afr-space/core/internal/models"
	"github.com/afr-space/core/internal/modules/article"
	"github.com/afr-space/core/internal/modules/auth"
	"github.com/afr-space/core/internal/modules/health"
	"github.com/afr-space/core/internal/modules/market"
	"github.com/afr-space/core/internal/modules/site"
	"github.com/afr-space/core/internal/modules/upload"
	"github.com/afr-space/core/internal/modules/user"
	"github.com/afr-space/core/internal/pkg/jwt"
	"github.com/afr-space/core/internal/pkg/response"
	"github.com/afr-space/core/internal/pkg/session"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const apiPrefix = "/api"

func (a *App) registerRoutes() error {
	r := a.router
	cfg := a.cfg

	codec, err := jwt.NewCodec(cfg.Auth.JWTSecret, jwt.WithTTL(cfg.Auth.TokenTTL))
	if err != nil {
		return err
	}
	transport := session.NewTransport(cfg.Auth.CookieName, codec.TTL(), cfg.Auth.CookieSecure)

	users := user.NewRepository(a.db)
	userSvc := user.NewService(users)
	gate := auth.NewGate(codec, transport, users, a.metrics, a.logger)
	authSvc := auth.NewService(users, codec, a.metrics, a.logger)

	authMW := middleware.Auth(gate)
	adminMW := middleware.RequireRole(models.RoleAdmin)
	editorMW := middleware.RequireRole(models.RoleAdmin, models.RoleEditor)

	var throttle gin.HandlerFunc
	var snapshots market.Cache
	if a.redis != nil {
		throttle = middleware.LoginThrottle(a.redis, a.logger)
		snapshots = a.redis
	}

	var store upload.Storage
	if cfg.Storage.S3.Enabled() {
		s3store, err := upload.NewS3Storage(cfg.Storage.S3)
		if err != nil {
			return err
		}
		store = s3store
	} else {
		a.logger.Info("object storage not configured, uploads disabled")
	}

	r.NoRoute(func(c *gin.Context) { response.NotFound(c) })
	r.NoMethod(func(c *gin.Context) {
		response.Error(c, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	r.GET("/metrics", gin.WrapH(a.metrics.Handler()))

	articleSvc := article.NewService(a.db)
	site.NewHandler(articleSvc, gate, a.logger).RegisterRoutes(r)

	api := r.Group(apiPrefix)
	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/uptime", func(c *gin.Context) {
		up := time.Since(a.started)
		c.JSON(http.StatusOK, gin.H{"timestamp": up.Milliseconds(), "humanize": humanizeDuration(up)})
	})

	checks := health.Checks{Database: func(ctx context.Context) error { return database.Ping(ctx, a.db) }}
	if a.redis != nil {
		checks.Redis = a.redis.Ping
	}
	health.RegisterRoutes(api, checks)

	auth.NewHandler(authSvc, gate, transport).RegisterRoutes(api, throttle)
	user.NewHandler(userSvc).RegisterRoutes(api, authMW, adminMW)
	article.NewHandler(articleSvc, a.logger).RegisterRoutes(api, authMW, editorMW)
	upload.NewHandler(store, a.logger).RegisterRoutes(api, authMW, editorMW)

	fetcher := market.NewFetcher(cfg.Market.SourceURL, cfg.Market.Symbols, cfg.Market.Timeout)
	market.NewHandler(market.NewService(fetcher, snapshots, cfg.Market.CacheTTL, a.logger)).RegisterRoutes(api)

	a.logger.Debug("routes registered", zap.Int("count", len(r.Routes())))
	return nil
}

var appInfo = gin.H{
	"name":    "afr-space-core",
	"version": "1.0.0",
}
