package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/afr-space/core/internal/config"
	"github.com/afr-space/core/internal/database"
	"github.com/afr-space/core/internal/middleware"
	"github.com/afr-space/core/internal/pkg/metrics"
	pkgredis "github.com/afr-space/core/internal/pkg/redis"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg     *config.AppConfig
	router  *gin.Engine
	db      *gorm.DB
	redis   *pkgredis.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
	started time.Time
}

// New initializes the application: config → DB → Redis → routes.
// Redis is optional; without it the market cache and login throttle are off.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := applyRuntimeSettings(cfg); err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc := connectRedis(logger, cfg.RedisURL)

	a, err := build(cfg, logger, db, rc)
	if err != nil {
		database.Close(db)
		if rc != nil {
			_ = rc.Close()
		}
		return nil, err
	}
	return a, nil
}

// connectRedis returns nil when Redis cannot be reached.
func connectRedis(logger *zap.Logger, url string) *pkgredis.Client {
	rc, err := pkgredis.Connect(url)
	if err != nil {
		logger.Warn("redis unavailable, running without cache and login throttle", zap.Error(err))
		return nil
	}
	return rc
}

func build(cfg *config.AppConfig, logger *zap.Logger, db *gorm.DB, rc *pkgredis.Client) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics(m))
	router.Use(cors.New(corsConfig(cfg)))

	a := &App{cfg: cfg, router: router, db: db, redis: rc, metrics: m, logger: logger, started: time.Now()}
	if err := a.registerRoutes(); err != nil {
		return nil, err
	}
	return a, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown releases the database pool and the Redis client.
func (a *App) Shutdown() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	database.Close(a.db)
}
