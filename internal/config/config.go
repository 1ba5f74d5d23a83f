package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingJWTSecret is returned when no token signing secret is configured.
var ErrMissingJWTSecret = errors.New("auth.jwt_secret (or JWT_SECRET) is required")

// Load reads the YAML config at configPath, applies .env and environment
// overrides and validates the result. A missing file is tolerated only for
// the default path so that a pure environment configuration works.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decodeInto(&cfg, content, path); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultConfigPath:
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	finalize(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return &cfg, nil
}

// Parse decodes YAML content on top of the defaults without touching the
// process environment.
func Parse(content []byte) (*AppConfig, error) {
	cfg := defaultAppConfig()
	if err := decodeInto(&cfg, content, "<inline>"); err != nil {
		return nil, err
	}
	finalize(&cfg)
	return &cfg, nil
}

func decodeInto(cfg *AppConfig, content []byte, path string) error {
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	raw := rawAppConfig{}
	if err := decoder.Decode(&raw); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}
	return applyRawAppConfig(cfg, raw)
}

func defaultAppConfig() AppConfig {
	cfg := AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseRuntimeConfig{
			Host:      defaultDBHost,
			Port:      defaultDBPort,
			User:      defaultDBUser,
			Password:  defaultDBPassword,
			Name:      defaultDBName,
			Charset:   defaultDBCharset,
			ParseTime: true,
			Loc:       defaultDBLoc,
		},
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
			DB:   defaultRedisDB,
		},
		Auth: AuthConfig{
			TokenTTL:   defaultTokenTTL,
			CookieName: defaultCookieName,
		},
		Market: MarketConfig{
			SourceURL: defaultMarketSourceURL,
			Symbols:   append([]string(nil), defaultMarketSymbols...),
			CacheTTL:  defaultMarketCacheTTL,
			Timeout:   defaultMarketTimeout,
		},
		Seed: SeedConfig{
			AdminUsername: defaultSeedUsername,
			AdminPassword: defaultSeedPassword,
		},
	}
	finalize(&cfg)
	return cfg
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) error {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	cfg.Database = applyRawDatabaseConfig(cfg.Database, raw)
	cfg.Redis = applyRawRedisConfig(cfg.Redis, raw)
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.Paths.Logs = v
	}
	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	}
	if v := strings.TrimSpace(raw.Timezone); v != "" {
		cfg.Timezone = v
	}

	// top-level jwt_secret is kept for older config files
	if v := strings.TrimSpace(raw.JWTSecret); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := strings.TrimSpace(raw.Auth.JWTSecret); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := strings.TrimSpace(raw.Auth.TokenTTL); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid auth.token_ttl %q: %w", v, err)
		}
		cfg.Auth.TokenTTL = d
	}
	if v := strings.TrimSpace(raw.Auth.CookieName); v != "" {
		cfg.Auth.CookieName = v
	}
	if raw.Auth.CookieSecure != nil {
		cfg.Auth.CookieSecure = *raw.Auth.CookieSecure
	}

	if v := strings.TrimSpace(raw.Market.SourceURL); v != "" {
		cfg.Market.SourceURL = v
	}
	if raw.Market.Symbols != nil {
		cfg.Market.Symbols = normalizeOrigins(raw.Market.Symbols)
	}
	if v := strings.TrimSpace(raw.Market.CacheTTL); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid market.cache_ttl %q: %w", v, err)
		}
		cfg.Market.CacheTTL = d
	}
	if v := strings.TrimSpace(raw.Market.Timeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid market.timeout %q: %w", v, err)
		}
		cfg.Market.Timeout = d
	}

	cfg.Storage = normalizeStorageConfig(raw.Storage)
	if v := strings.TrimSpace(raw.Seed.AdminUsername); v != "" {
		cfg.Seed.AdminUsername = v
	}
	if v := raw.Seed.AdminPassword; v != "" {
		cfg.Seed.AdminPassword = v
	}
	return nil
}

func applyRawDatabaseConfig(current DatabaseRuntimeConfig, raw rawAppConfig) DatabaseRuntimeConfig {
	cfg := current

	if v := strings.TrimSpace(raw.Database.DSN); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(raw.DSN); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(raw.DatabaseURL); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(raw.Database.Host); v != "" {
		cfg.Host = v
	}
	if raw.Database.Port != 0 {
		cfg.Port = raw.Database.Port
	}
	if v := strings.TrimSpace(raw.Database.User); v != "" {
		cfg.User = v
	}
	if v := raw.Database.Password; v != "" {
		cfg.Password = v
	}
	if v := strings.TrimSpace(raw.Database.Name); v != "" {
		cfg.Name = v
	}
	if v := strings.TrimSpace(raw.Database.Charset); v != "" {
		cfg.Charset = v
	}
	if raw.Database.ParseTime != nil {
		cfg.ParseTime = *raw.Database.ParseTime
	}
	if v := strings.TrimSpace(raw.Database.Loc); v != "" {
		cfg.Loc = v
	}
	if raw.Database.Params != nil {
		cfg.Params = raw.Database.Params
	}
	return cfg
}

func applyRawRedisConfig(current RedisRuntimeConfig, raw rawAppConfig) RedisRuntimeConfig {
	cfg := current

	if v := strings.TrimSpace(raw.Redis.URL); v != "" {
		cfg.URL = v
	}
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		cfg.URL = v
	}
	if v := strings.TrimSpace(raw.Redis.Host); v != "" {
		cfg.Host = v
	}
	if raw.Redis.Port != 0 {
		cfg.Port = raw.Redis.Port
	}
	if v := strings.TrimSpace(raw.Redis.Username); v != "" {
		cfg.Username = v
	}
	if v := raw.Redis.Password; v != "" {
		cfg.Password = v
	}
	if raw.Redis.DB != nil {
		cfg.DB = *raw.Redis.DB
	}
	if raw.Redis.TLS != nil {
		cfg.TLS = *raw.Redis.TLS
	}
	if v := strings.TrimSpace(raw.Redis.Scheme); v != "" {
		cfg.Scheme = v
	}
	if raw.Redis.Params != nil {
		cfg.Params = raw.Redis.Params
	}
	return cfg
}

// finalize normalizes every section and rebuilds the derived connection strings.
func finalize(cfg *AppConfig) {
	cfg.Database = normalizeDatabaseConfig(cfg.Database)
	cfg.Redis = normalizeRedisConfig(cfg.Redis)
	cfg.DSN = cfg.Database.DSNValue()
	cfg.RedisURL = cfg.Redis.URLValue()
	cfg.Auth = normalizeAuthConfig(cfg.Auth)
	cfg.Market = normalizeMarketConfig(cfg.Market)
	cfg.Paths = normalizeRuntimePaths(cfg.Paths)
	cfg.Env = normalizeEnv(cfg.Env)
}

// Validate reports configuration errors that must stop the process.
func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		return fmt.Errorf("invalid redis.port %d, expected 1-65535", c.Redis.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
	}
	if c.Auth.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if !c.IsDev() && len(c.Auth.JWTSecret) < minProdSecretBytes {
		return fmt.Errorf("auth.jwt_secret must be at least %d bytes in %s", minProdSecretBytes, c.Env)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("invalid auth.token_ttl %s, expected > 0", c.Auth.TokenTTL)
	}
	if c.Market.CacheTTL < 0 {
		return fmt.Errorf("invalid market.cache_ttl %s, expected >= 0", c.Market.CacheTTL)
	}
	return nil
}

// IsDev reports whether the process runs outside production.
func (c *AppConfig) IsDev() bool { return c.Env != envProduction }

// LogDir returns the resolved directory for daily log files.
func (c *AppConfig) LogDir() string { return ResolveRuntimePath(c.Paths.Logs, "logs") }
