package config

import (
	"strings"
	"time"
)

func normalizeDatabaseConfig(cfg DatabaseRuntimeConfig) DatabaseRuntimeConfig {
	cfg.DSN = strings.TrimSpace(cfg.DSN)
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.User = strings.TrimSpace(cfg.User)
	cfg.Name = strings.TrimSpace(cfg.Name)
	cfg.Charset = strings.TrimSpace(cfg.Charset)
	cfg.Loc = strings.TrimSpace(cfg.Loc)

	if cfg.Host == "" {
		cfg.Host = defaultDBHost
	}
	if cfg.Port == 0 {
		cfg.Port = defaultDBPort
	}
	if cfg.User == "" {
		cfg.User = defaultDBUser
	}
	if cfg.Name == "" {
		cfg.Name = defaultDBName
	}
	if cfg.Charset == "" {
		cfg.Charset = defaultDBCharset
	}
	if cfg.Loc == "" {
		cfg.Loc = defaultDBLoc
	}
	if cfg.Params != nil {
		cfg.Params = copyStringMap(cfg.Params)
	}
	return cfg
}

func normalizeRedisConfig(cfg RedisRuntimeConfig) RedisRuntimeConfig {
	cfg.URL = normalizeRedisRawURL(cfg.URL)
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.Scheme = strings.ToLower(strings.TrimSpace(cfg.Scheme))

	if cfg.Host == "" && cfg.URL == "" {
		cfg.Host = defaultRedisHost
	}
	if cfg.Port == 0 {
		cfg.Port = defaultRedisPort
	}
	if cfg.Scheme == "" {
		if cfg.TLS {
			cfg.Scheme = "rediss"
		} else {
			cfg.Scheme = "redis"
		}
	}
	if cfg.Params != nil {
		cfg.Params = copyStringMap(cfg.Params)
	}
	return cfg
}

func normalizeRedisRawURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "redis://") || strings.HasPrefix(trimmed, "rediss://") {
		return trimmed
	}
	return "redis://" + trimmed
}

func normalizeAuthConfig(cfg AuthConfig) AuthConfig {
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	cfg.CookieName = strings.TrimSpace(cfg.CookieName)
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	return cfg
}

func normalizeMarketConfig(cfg MarketConfig) MarketConfig {
	cfg.SourceURL = strings.TrimSpace(cfg.SourceURL)
	if cfg.SourceURL == "" {
		cfg.SourceURL = defaultMarketSourceURL
	}
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = append([]string(nil), defaultMarketSymbols...)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultMarketTimeout
	}
	return cfg
}

func normalizeStorageConfig(cfg StorageConfig) StorageConfig {
	s3 := cfg.S3
	s3.Bucket = strings.TrimSpace(s3.Bucket)
	s3.Region = strings.TrimSpace(s3.Region)
	s3.Endpoint = strings.TrimRight(strings.TrimSpace(s3.Endpoint), "/")
	s3.AccessKeyID = strings.TrimSpace(s3.AccessKeyID)
	s3.SecretAccessKey = strings.TrimSpace(s3.SecretAccessKey)
	s3.PublicBaseURL = strings.TrimRight(strings.TrimSpace(s3.PublicBaseURL), "/")
	return StorageConfig{S3: s3}
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	switch trimmed {
	case "":
		return defaultEnv
	case "prod":
		return envProduction
	case "dev":
		return defaultEnv
	}
	return trimmed
}

func normalizeRuntimePaths(paths RuntimePathsConfig) RuntimePathsConfig {
	paths.Logs = strings.TrimSpace(paths.Logs)
	return paths
}

func parseDurationOr(raw string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback, nil
	}
	return time.ParseDuration(trimmed)
}

func copyStringMap(input map[string]string) map[string]string {
	if input == nil {
		return nil
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}
