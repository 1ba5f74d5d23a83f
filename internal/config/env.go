package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override file settings.
const (
	EnvPort         = "AFR_PORT"
	EnvMode         = "AFR_ENV"
	EnvJWTSecret    = "JWT_SECRET"
	EnvDatabaseDSN  = "AFR_DATABASE_DSN"
	EnvRedisURL     = "AFR_REDIS_URL"
	EnvCookieSecure = "AFR_COOKIE_SECURE"
	EnvTokenTTL     = "AFR_TOKEN_TTL"
	EnvMarketTTL    = "AFR_MARKET_CACHE_TTL"
	EnvSeedPassword = "AFR_SEED_ADMIN_PASSWORD"
	EnvS3Bucket     = "AFR_S3_BUCKET"
	EnvS3AccessKey  = "AFR_S3_ACCESS_KEY_ID"
	EnvS3SecretKey  = "AFR_S3_SECRET_ACCESS_KEY"
	EnvS3Region     = "AFR_S3_REGION"
	EnvS3Endpoint   = "AFR_S3_ENDPOINT"
	EnvS3PublicBase = "AFR_S3_PUBLIC_BASE_URL"
)

// LoadDotEnv loads .env files into the process environment. Missing files
// are skipped and variables already set are never overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *AppConfig, lookup lookupFunc) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		cfg.Port = port
	}
	if v, ok := get(EnvMode); ok {
		cfg.Env = v
	}
	if v, ok := get(EnvJWTSecret); ok {
		cfg.Auth.JWTSecret = v
	}
	if v, ok := get(EnvDatabaseDSN); ok {
		cfg.Database.DSN = v
	}
	if v, ok := get(EnvRedisURL); ok {
		cfg.Redis.URL = v
	}
	if v, ok := get(EnvCookieSecure); ok {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvCookieSecure, v, err)
		}
		cfg.Auth.CookieSecure = secure
	}
	if v, ok := get(EnvTokenTTL); ok {
		d, err := parseDurationOr(v, cfg.Auth.TokenTTL)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTokenTTL, v, err)
		}
		cfg.Auth.TokenTTL = d
	}
	if v, ok := get(EnvMarketTTL); ok {
		d, err := parseDurationOr(v, cfg.Market.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvMarketTTL, v, err)
		}
		cfg.Market.CacheTTL = d
	}
	if v, ok := lookup(EnvSeedPassword); ok && v != "" {
		cfg.Seed.AdminPassword = v
	}

	s3 := &cfg.Storage.S3
	for key, dst := range map[string]*string{
		EnvS3Bucket:     &s3.Bucket,
		EnvS3AccessKey:  &s3.AccessKeyID,
		EnvS3SecretKey:  &s3.SecretAccessKey,
		EnvS3Region:     &s3.Region,
		EnvS3Endpoint:   &s3.Endpoint,
		EnvS3PublicBase: &s3.PublicBaseURL,
	} {
		if v, ok := get(key); ok {
			*dst = v
		}
	}
	cfg.Storage = normalizeStorageConfig(cfg.Storage)
	return nil
}
