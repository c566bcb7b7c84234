package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/tinoosan/groupledger/internal/config"
	"github.com/tinoosan/groupledger/internal/events"
	"github.com/tinoosan/groupledger/internal/events/kafka"
	"github.com/tinoosan/groupledger/internal/service/journal"
	"github.com/tinoosan/groupledger/internal/service/participant"
	"github.com/tinoosan/groupledger/internal/storage/memory"
	"github.com/tinoosan/groupledger/internal/storage/offline"
	pgstore "github.com/tinoosan/groupledger/internal/storage/postgres"
)

// ledgerStore is what every backend provides.
type ledgerStore interface {
	journal.Repo
	journal.Writer
	participant.Repo
	participant.Writer
	Ready(ctx context.Context) error
	Close()
}

var (
	_ ledgerStore = (*pgstore.Store)(nil)
	_ ledgerStore = (*memory.Store)(nil)
	_ ledgerStore = (*offline.Store)(nil)
)

// app is the wired process: one store, the services on top of it and the event sink.
type app struct {
	cfg          *config.Config
	log          *slog.Logger
	store        ledgerStore
	pub          events.Publisher
	journal      journal.Service
	participants participant.Service
}

// loadApp reads config, builds the logger and wires storage and services.
// Storage problems never fail startup; the offline store takes over.
func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := buildLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	return wire(ctx, cfg, logger), nil
}

func wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) *app {
	a := &app{cfg: cfg, log: logger, store: openStore(ctx, cfg, logger), pub: events.Noop{}}
	if cfg.PublishEnabled() {
		a.pub = kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("publishing entry events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}
	a.journal = journal.New(a.store, a.store,
		journal.WithCurrency(cfg.Currency),
		journal.WithPublisher(a.pub),
		journal.WithLogger(logger),
	)
	a.participants = participant.New(a.store, a.store, logger)
	return a
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) ledgerStore {
	if cfg.StorageBackend == config.BackendMemory {
		logger.Info("storage backend: memory")
		return memory.New()
	}
	gw, err := pgstore.Connect(ctx, cfg.DatabaseURL,
		pgstore.WithRetry(pgstore.RetryPolicy{Attempts: cfg.ConnectAttempts, Backoff: cfg.ConnectBackoff}),
		pgstore.WithStatementTimeout(cfg.StatementTimeout),
		pgstore.WithMaxConns(cfg.MaxConns),
		pgstore.WithLogger(logger),
	)
	if err != nil {
		logger.Error("postgres unavailable; running degraded", "err", err)
		return offline.New(err)
	}
	logger.Info("storage backend: postgres")
	return pgstore.NewStore(gw, cfg.Currency)
}

func (a *app) Close() {
	if err := a.pub.Close(); err != nil {
		a.log.Warn("close publisher", "err", err)
	}
	a.store.Close()
}
