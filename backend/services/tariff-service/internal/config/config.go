package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "meterbill/backend/libs/config"
	"meterbill/backend/libs/logging"
)

// Storage drivers for calculation history.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
)

// Config defines tariff service configuration.
type Config struct {
	HTTP struct {
		Port           string   `yaml:"port" env:"TARIFF_HTTP_PORT" default:"8085"`
		AllowedOrigins []string `yaml:"allowedOrigins" env:"TARIFF_CORS_ORIGINS" default:"*"`
	} `yaml:"http"`
	Log     logging.Config `yaml:"log"`
	Storage struct {
		Driver string `yaml:"driver" env:"TARIFF_STORAGE_DRIVER" default:"memory"`
	} `yaml:"storage"`
	Database struct {
		DSN string `yaml:"dsn" env:"TARIFF_POSTGRES_DSN"`
	} `yaml:"database"`
	Mongo struct {
		URI      string `yaml:"uri" env:"TARIFF_MONGO_URI"`
		Database string `yaml:"database" env:"TARIFF_MONGO_DATABASE" default:"meterbill"`
		User     string `yaml:"user" env:"TARIFF_MONGO_USER"`
		Password string `yaml:"password" env:"TARIFF_MONGO_PASSWORD"`
	} `yaml:"mongo"`
	Redis struct {
		Addr      string        `yaml:"addr" env:"TARIFF_REDIS_ADDR"`
		Password  string        `yaml:"password" env:"TARIFF_REDIS_PASSWORD"`
		DB        int           `yaml:"db" env:"TARIFF_REDIS_DB"`
		StatusTTL time.Duration `yaml:"statusTtl" env:"TARIFF_STATUS_TTL" default:"168h"`
	} `yaml:"redis"`
	Tariff struct {
		SchedulesFile string `yaml:"schedulesFile" env:"TARIFF_SCHEDULES_FILE"`
		HistoryLimit  int    `yaml:"historyLimit" env:"TARIFF_HISTORY_LIMIT" default:"100"`
	} `yaml:"tariff"`
	Feed struct {
		PingInterval time.Duration `yaml:"pingInterval" env:"TARIFF_FEED_PING_INTERVAL" default:"30s"`
		WriteTimeout time.Duration `yaml:"writeTimeout" env:"TARIFF_FEED_WRITE_TIMEOUT" default:"10s"`
	} `yaml:"feed"`
}

// Load configuration from file/env.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return errors.New("config: database dsn required for postgres storage")
		}
	case StorageMongo:
		if strings.TrimSpace(c.Mongo.URI) == "" {
			return errors.New("config: mongo uri required for mongo storage")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Tariff.HistoryLimit <= 0 {
		return errors.New("config: history limit must be positive")
	}
	return nil
}

// HTTPAddress returns :port style string. Values that already carry a host are kept.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8085"
	}
	if strings.Contains(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
