// Package config loads process settings from the environment (and an optional .env file).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/govalues/money"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL      string
	StorageBackend   string
	Currency         string
	ConnectAttempts  int
	ConnectBackoff   time.Duration
	StatementTimeout time.Duration
	MaxConns         int32
	RunMigrations    bool
	HTTPAddr         string
	KafkaBrokers     []string
	KafkaTopic       string
	LogLevel         string
	LogFormat        string
}

// Load reads configuration. Values in the process environment override .env,
// which overrides the defaults below.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("STORAGE_BACKEND", BackendPostgres)
	v.SetDefault("LEDGER_CURRENCY", "INR")
	v.SetDefault("DB_CONNECT_ATTEMPTS", 3)
	v.SetDefault("DB_CONNECT_BACKOFF", "2s")
	v.SetDefault("DB_STATEMENT_TIMEOUT", "5s")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "ledger.entry_recorded")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.AutomaticEnv()
	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	backoff, err := time.ParseDuration(v.GetString("DB_CONNECT_BACKOFF"))
	if err != nil {
		return nil, fmt.Errorf("DB_CONNECT_BACKOFF: %w", err)
	}
	timeout, err := time.ParseDuration(v.GetString("DB_STATEMENT_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("DB_STATEMENT_TIMEOUT: %w", err)
	}

	cfg := &Config{
		DatabaseURL:      strings.TrimSpace(v.GetString("DATABASE_URL")),
		StorageBackend:   strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND"))),
		Currency:         strings.ToUpper(strings.TrimSpace(v.GetString("LEDGER_CURRENCY"))),
		ConnectAttempts:  v.GetInt("DB_CONNECT_ATTEMPTS"),
		ConnectBackoff:   backoff,
		StatementTimeout: timeout,
		MaxConns:         v.GetInt32("DB_MAX_CONNS"),
		RunMigrations:    v.GetBool("RUN_MIGRATIONS"),
		HTTPAddr:         v.GetString("HTTP_ADDR"),
		KafkaBrokers:     splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:       v.GetString("KAFKA_TOPIC"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        strings.ToLower(v.GetString("LOG_FORMAT")),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND: unknown backend %q", c.StorageBackend)
	}
	if _, err := money.ParseCurr(c.Currency); err != nil {
		return fmt.Errorf("LEDGER_CURRENCY: %w", err)
	}
	if c.ConnectAttempts < 1 {
		return errors.New("DB_CONNECT_ATTEMPTS must be >= 1")
	}
	if c.ConnectBackoff < 0 {
		return errors.New("DB_CONNECT_BACKOFF must not be negative")
	}
	if c.StatementTimeout < 0 {
		return errors.New("DB_STATEMENT_TIMEOUT must not be negative")
	}
	if c.MaxConns < 1 {
		return errors.New("DB_MAX_CONNS must be >= 1")
	}
	return nil
}

// PublishEnabled reports whether EntryRecorded events go to Kafka.
func (c *Config) PublishEnabled() bool { return len(c.KafkaBrokers) > 0 }

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
