package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config agrupa toda la configuración del servicio. Todo viene de env vars.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`

	// memory | postgres | sqlite | mysql
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`
	DBDSN         string `env:"DB_DSN"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"purrr.db"`
	MySQLDSN      string `env:"MYSQL_DSN"`

	// Sin REDIS_ADDR el dashboard se calcula en cada request.
	RedisAddr         string        `env:"REDIS_ADDR"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	RedisDB           int           `env:"REDIS_DB" envDefault:"0"`
	DashboardCacheTTL time.Duration `env:"DASHBOARD_CACHE_TTL" envDefault:"60s"`

	// dev | jwt | remote
	AuthMode        string        `env:"AUTH_MODE" envDefault:"dev"`
	JWTSecret       string        `env:"JWT_SECRET"`
	JWTIssuer       string        `env:"JWT_ISSUER"`
	IdentityBaseURL string        `env:"IDENTITY_BASE_URL"`
	IdentityAPIKey  string        `env:"IDENTITY_API_KEY"`
	IdentityTimeout time.Duration `env:"IDENTITY_TIMEOUT" envDefault:"5s"`

	CatalogPath       string   `env:"CATALOG_PATH"`
	StartingCoins     int64    `env:"STARTING_COINS" envDefault:"100"`
	AdminUserIDs      []string `env:"ADMIN_USER_IDS" envSeparator:","`
	PlayRatePerMinute int      `env:"PLAY_RATE_PER_MINUTE" envDefault:"30"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"text"`
	LogPath       string `env:"LOG_PATH"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"7"`
	AppName       string `env:"APP_NAME" envDefault:"purrr-love"`
}

// Load lee la configuración desde el entorno y valida combinaciones obvias.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	cfg.AuthMode = strings.ToLower(strings.TrimSpace(cfg.AuthMode))

	// Compat con el handoff original: si hay DB_DSN y nadie eligió driver, usamos postgres.
	if cfg.StorageDriver == "memory" && strings.TrimSpace(cfg.DBDSN) != "" {
		cfg.StorageDriver = "postgres"
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StorageDriver {
	case "memory", "sqlite":
	case "postgres":
		if strings.TrimSpace(c.DBDSN) == "" {
			return fmt.Errorf("config: DB_DSN is required for postgres storage")
		}
	case "mysql":
		if strings.TrimSpace(c.MySQLDSN) == "" {
			return fmt.Errorf("config: MYSQL_DSN is required for mysql storage")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.AuthMode {
	case "dev":
	case "jwt":
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("config: JWT_SECRET is required for jwt auth")
		}
	case "remote":
		if strings.TrimSpace(c.IdentityBaseURL) == "" || strings.TrimSpace(c.IdentityAPIKey) == "" {
			return fmt.Errorf("config: IDENTITY_BASE_URL and IDENTITY_API_KEY are required for remote auth")
		}
	default:
		return fmt.Errorf("config: unknown AUTH_MODE %q", c.AuthMode)
	}

	if c.StartingCoins <= 0 {
		return fmt.Errorf("config: STARTING_COINS must be positive")
	}
	return nil
}

// Addr devuelve la dirección de escucha del server HTTP.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}
