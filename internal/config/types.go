package config

import "time"

// AppConfig holds runtime startup configuration loaded from YAML and the environment.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	DSN            string                `yaml:"dsn"` // MySQL DSN
	RedisURL       string                `yaml:"redis_url"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	Redis          RedisRuntimeConfig    `yaml:"redis"`
	Env            string                `yaml:"env"` // "development" | "production"
	Paths          RuntimePathsConfig    `yaml:"paths"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
	Timezone       string                `yaml:"timezone"`
	Auth           AuthConfig            `yaml:"auth"`
	Market         MarketConfig          `yaml:"market"`
	Storage        StorageConfig         `yaml:"storage"`
	Seed           SeedConfig            `yaml:"seed"`
}

type DatabaseRuntimeConfig struct {
	DSN       string            `yaml:"dsn"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	Charset   string            `yaml:"charset"`
	ParseTime bool              `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

type RedisRuntimeConfig struct {
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       int               `yaml:"db"`
	TLS      bool              `yaml:"tls"`
	Scheme   string            `yaml:"scheme"`
	Params   map[string]string `yaml:"params"`
}

// AuthConfig configures token signing and the session cookie.
type AuthConfig struct {
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	CookieName   string        `yaml:"cookie_name"`
	CookieSecure bool          `yaml:"cookie_secure"`
}

// MarketConfig configures the market index snapshot source.
type MarketConfig struct {
	SourceURL string        `yaml:"source_url"`
	Symbols   []string      `yaml:"symbols"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
	Timeout   time.Duration `yaml:"timeout"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

// S3Config configures the S3-compatible bucket used for cover images.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PublicBaseURL   string `yaml:"public_base_url"`
	PathStyle       bool   `yaml:"path_style"`
}

// Enabled reports whether enough settings are present to upload objects.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.Region != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// SeedConfig holds the bootstrap administrator credentials.
type SeedConfig struct {
	AdminUsername string `yaml:"admin_username"`
	AdminPassword string `yaml:"admin_password"`
}

type RuntimePathsConfig struct {
	Logs string `yaml:"logs"`
}

type rawAppConfig struct {
	Port           int               `yaml:"port"`
	DSN            string            `yaml:"dsn"`
	DatabaseURL    string            `yaml:"database_url"`
	RedisURL       string            `yaml:"redis_url"`
	Database       rawDatabaseConfig `yaml:"database"`
	Redis          rawRedisConfig    `yaml:"redis"`
	Env            string            `yaml:"env"`
	Paths          rawPathsConfig    `yaml:"paths"`
	LogDir         string            `yaml:"log_dir"`
	AllowedOrigins []string          `yaml:"allowed_origins"`
	JWTSecret      string            `yaml:"jwt_secret"`
	Timezone       string            `yaml:"timezone"`
	Auth           rawAuthConfig     `yaml:"auth"`
	Market         rawMarketConfig   `yaml:"market"`
	Storage        StorageConfig     `yaml:"storage"`
	Seed           SeedConfig        `yaml:"seed"`
}

type rawDatabaseConfig struct {
	DSN       string            `yaml:"dsn"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	Charset   string            `yaml:"charset"`
	ParseTime *bool             `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

type rawRedisConfig struct {
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       *int              `yaml:"db"`
	TLS      *bool             `yaml:"tls"`
	Scheme   string            `yaml:"scheme"`
	Params   map[string]string `yaml:"params"`
}

type rawAuthConfig struct {
	JWTSecret    string `yaml:"jwt_secret"`
	TokenTTL     string `yaml:"token_ttl"`
	CookieName   string `yaml:"cookie_name"`
	CookieSecure *bool  `yaml:"cookie_secure"`
}

type rawMarketConfig struct {
	SourceURL string   `yaml:"source_url"`
	Symbols   []string `yaml:"symbols"`
	CacheTTL  string   `yaml:"cache_ttl"`
	Timeout   string   `yaml:"timeout"`
}

type rawPathsConfig struct {
	Logs string `yaml:"logs"`
}
