package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8085", cfg.HTTPAddress())
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 100, cfg.Tariff.HistoryLimit)
	assert.Equal(t, 168*time.Hour, cfg.Redis.StatusTTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TARIFF_HTTP_PORT", ":9999")
	t.Setenv("TARIFF_STORAGE_DRIVER", "Postgres")
	t.Setenv("TARIFF_POSTGRES_DSN", "postgres://localhost/meterbill")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTPAddress())
	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = StoragePostgres }, "dsn"},
		{"mongo without uri", func(c *Config) { c.Storage.Driver = StorageMongo }, "mongo uri"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "sqlite" }, "unknown storage driver"},
		{"zero history limit", func(c *Config) { c.Storage.Driver = StorageMemory }, "history limit"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{}
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}
