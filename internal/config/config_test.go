package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := fromViper(newViper())
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.StorageBackend)
	assert.Equal(t, "INR", cfg.Currency)
	assert.Equal(t, 3, cfg.ConnectAttempts)
	assert.Equal(t, 2*time.Second, cfg.ConnectBackoff)
	assert.Equal(t, 5*time.Second, cfg.StatementTimeout)
	assert.Equal(t, int32(10), cfg.MaxConns)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "ledger.entry_recorded", cfg.KafkaTopic)
	assert.False(t, cfg.PublishEnabled())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", " postgres://u:p@db/ledger ")
	t.Setenv("STORAGE_BACKEND", "Memory")
	t.Setenv("LEDGER_CURRENCY", "usd")
	t.Setenv("DB_CONNECT_ATTEMPTS", "5")
	t.Setenv("DB_CONNECT_BACKOFF", "250ms")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")

	cfg, err := fromViper(newViper())
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db/ledger", cfg.DatabaseURL)
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, 5, cfg.ConnectAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.ConnectBackoff)
	assert.False(t, cfg.RunMigrations)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.PublishEnabled())
}

func TestRejectsBadSettings(t *testing.T) {
	cases := map[string][2]string{
		"backend":  {"STORAGE_BACKEND", "sqlite"},
		"currency": {"LEDGER_CURRENCY", "ZZZ"},
		"attempts": {"DB_CONNECT_ATTEMPTS", "0"},
		"backoff":  {"DB_CONNECT_BACKOFF", "soon"},
		"timeout":  {"DB_STATEMENT_TIMEOUT", "-1s"},
		"conns":    {"DB_MAX_CONNS", "0"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := fromViper(newViper())
			assert.ErrorContains(t, err, kv[0])
		})
	}
}
