package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	HTTP struct {
		Port    string   `yaml:"port" env:"SAMPLE_HTTP_PORT" default:"8080"`
		Origins []string `yaml:"origins" env:"SAMPLE_ORIGINS" default:"*"`
	} `yaml:"http"`
	Redis struct {
		Addr string        `yaml:"addr"`
		DB   int           `yaml:"db"`
		TTL  time.Duration `yaml:"ttl" default:"24h"`
	} `yaml:"redis"`
	Debug bool    `yaml:"debug"`
	Ratio float64 `yaml:"ratio" env:"-"`
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(defaultConfigPathEnv, "")

	var cfg sampleConfig
	require.NoError(t, LoadConfig(&cfg))

	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, []string{"*"}, cfg.HTTP.Origins)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "http:\n  port: \"9000\"\nredis:\n  addr: redis:6379\n  ttl: 5m\nratio: 0.5\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	t.Setenv(defaultConfigPathEnv, path)
	t.Setenv("SAMPLE_ORIGINS", "http://a.test, http://b.test,,")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("DEBUG", "true")
	t.Setenv("RATIO", "9")

	var cfg sampleConfig
	require.NoError(t, LoadConfig(&cfg))

	assert.Equal(t, "9000", cfg.HTTP.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.Origins)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 0.5, cfg.Ratio)
}

func TestLoadConfigEnvDuration(t *testing.T) {
	t.Setenv(defaultConfigPathEnv, "")
	t.Setenv("REDIS_TTL", "90s")

	var cfg sampleConfig
	require.NoError(t, LoadConfig(&cfg))
	assert.Equal(t, 90*time.Second, cfg.Redis.TTL)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv(defaultConfigPathEnv, "")

	assert.Error(t, LoadConfig(nil))

	var notStruct int
	assert.Error(t, LoadConfig(&notStruct))

	t.Setenv("REDIS_DB", "three")
	var cfg sampleConfig
	err := LoadConfig(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_DB")
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv(defaultConfigPathEnv, filepath.Join(t.TempDir(), "nope.yaml"))

	var cfg sampleConfig
	assert.ErrorIs(t, LoadConfig(&cfg), os.ErrNotExist)
}
