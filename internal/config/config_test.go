package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) lookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("auth:\n  jwt_secret: dev-secret\n"))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "token", cfg.Auth.CookieName)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Auth.CookieSecure)
	assert.Equal(t, []string{"^SSEC", "^HSI", "^SPX", "^NDX"}, cfg.Market.Symbols)
	assert.Equal(t, time.Minute, cfg.Market.CacheTTL)
	assert.Equal(t, "redis://127.0.0.1:6379/0", cfg.RedisURL)
	assert.True(t, strings.HasPrefix(cfg.DSN, "root:password@tcp(127.0.0.1:3306)/afr?"), cfg.DSN)
	assert.Contains(t, cfg.DSN, "parseTime=true")
	assert.Contains(t, cfg.DSN, "charset=utf8mb4")
	require.NoError(t, cfg.Validate())
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("prot: 3000\n"))
	require.Error(t, err)
}

func TestParse_Durations(t *testing.T) {
	cfg, err := Parse([]byte("auth:\n  token_ttl: 2h\nmarket:\n  cache_ttl: 30s\n  symbols: [' ^SPX ', '']\n"))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 30*time.Second, cfg.Market.CacheTTL)
	assert.Equal(t, []string{"^SPX"}, cfg.Market.Symbols)

	_, err = Parse([]byte("auth:\n  token_ttl: soon\n"))
	require.Error(t, err)
}

func TestParse_ExplicitDSNWins(t *testing.T) {
	cfg, err := Parse([]byte("dsn: user:pw@tcp(db:3306)/site\ndatabase:\n  host: ignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "user:pw@tcp(db:3306)/site", cfg.DSN)
}

func TestParse_LegacyTopLevelSecret(t *testing.T) {
	cfg, err := Parse([]byte("jwt_secret: legacy\n"))
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.Auth.JWTSecret)
}

func TestValidate_MissingSecret(t *testing.T) {
	cfg, err := Parse([]byte("port: 8080\n"))
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingJWTSecret)
}

func TestValidate_ShortSecretInProduction(t *testing.T) {
	cfg, err := Parse([]byte("env: production\nauth:\n  jwt_secret: short\n"))
	require.NoError(t, err)
	require.Error(t, cfg.Validate())

	cfg.Auth.JWTSecret = strings.Repeat("k", 32)
	require.NoError(t, cfg.Validate())
}

func TestValidate_ShortSecretAllowedInDevelopment(t *testing.T) {
	cfg, err := Parse([]byte("auth:\n  jwt_secret: short\n"))
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Port(t *testing.T) {
	cfg, err := Parse([]byte("port: 70000\nauth:\n  jwt_secret: x\n"))
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestApplyEnv_Overrides(t *testing.T) {
	cfg := defaultAppConfig()
	err := applyEnv(&cfg, envMap(map[string]string{
		EnvPort:         "8081",
		EnvMode:         "prod",
		EnvJWTSecret:    "  from-env  ",
		EnvDatabaseDSN:  "u:p@tcp(h:3306)/d",
		EnvRedisURL:     "cache:6380/2",
		EnvCookieSecure: "true",
		EnvTokenTTL:     "1h",
		EnvS3Bucket:     "covers",
	}))
	require.NoError(t, err)
	finalize(&cfg)

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "u:p@tcp(h:3306)/d", cfg.DSN)
	assert.Equal(t, "redis://cache:6380/2", cfg.RedisURL)
	assert.True(t, cfg.Auth.CookieSecure)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "covers", cfg.Storage.S3.Bucket)
	assert.False(t, cfg.Storage.S3.Enabled())
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	cfg := defaultAppConfig()
	require.Error(t, applyEnv(&cfg, envMap(map[string]string{EnvPort: "abc"})))
	require.Error(t, applyEnv(&cfg, envMap(map[string]string{EnvCookieSecure: "maybe"})))
}

func TestLoad_FromFile(t *testing.T) {
	t.Setenv(EnvJWTSecret, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yml")
	require.NoError(t, os.WriteFile(path, []byte("port: 4000\nauth:\n  jwt_secret: file-secret\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
}

func TestRedisURLValue(t *testing.T) {
	cfg := RedisRuntimeConfig{Host: "r", Port: 6390, DB: 3, Password: "s3cret", TLS: true}
	assert.Equal(t, "rediss://:s3cret@r:6390/3", cfg.URLValue())
}
