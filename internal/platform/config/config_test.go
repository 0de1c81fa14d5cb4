package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("AUTH_MODE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, "dev", cfg.AuthMode)
	assert.EqualValues(t, 100, cfg.StartingCoins)
	assert.Equal(t, 60*time.Second, cfg.DashboardCacheTTL)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_DSNSelectsPostgres(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("AUTH_MODE", "")
	t.Setenv("DB_DSN", "postgres://purrr@localhost/purrr")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.StorageDriver)
}

func TestLoad_ParsesListsAndDurations(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("STORAGE_DRIVER", " SQLite ")
	t.Setenv("AUTH_MODE", "jwt")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ADMIN_USER_IDS", "u-1,u-2")
	t.Setenv("DASHBOARD_CACHE_TTL", "2m")
	t.Setenv("PORT", ":9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.StorageDriver)
	assert.Equal(t, []string{"u-1", "u-2"}, cfg.AdminUserIDs)
	assert.Equal(t, 2*time.Minute, cfg.DashboardCacheTTL)
	assert.Equal(t, ":9090", cfg.Addr())
}

func TestValidate(t *testing.T) {
	base := Config{StorageDriver: "memory", AuthMode: "dev", StartingCoins: 100}
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"postgres without dsn": func(c *Config) { c.StorageDriver = "postgres" },
		"mysql without dsn":    func(c *Config) { c.StorageDriver = "mysql" },
		"unknown driver":       func(c *Config) { c.StorageDriver = "mongo" },
		"jwt without secret":   func(c *Config) { c.AuthMode = "jwt" },
		"remote without url":   func(c *Config) { c.AuthMode = "remote"; c.IdentityAPIKey = "k" },
		"unknown auth":         func(c *Config) { c.AuthMode = "oauth" },
		"negative coins":       func(c *Config) { c.StartingCoins = -1 },
		"zero coins":           func(c *Config) { c.StartingCoins = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
