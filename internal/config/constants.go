package config

import "time"

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 3000
	defaultEnv        = "development"
	envProduction     = "production"

	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "afr"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"

	defaultRedisHost = "localhost"
	defaultRedisPort = 6379
	defaultRedisDB   = 0

	defaultTokenTTL    = 7 * 24 * time.Hour
	defaultCookieName  = "token"
	minProdSecretBytes = 32

	defaultMarketSourceURL = "https://stooq.com/q/l/"
	defaultMarketCacheTTL  = time.Minute
	defaultMarketTimeout   = 8 * time.Second

	defaultSeedUsername = "admin"
	defaultSeedPassword = "admin"
)

var defaultMarketSymbols = []string{"^SSEC", "^HSI", "^SPX", "^NDX"}
