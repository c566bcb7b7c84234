package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"

	"github.com/tinoosan/groupledger/internal/config"
	"github.com/tinoosan/groupledger/internal/httpapi"
	pgstore "github.com/tinoosan/groupledger/internal/storage/postgres"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string { return "serve" }
func (*serveCmd) Synopsis() string { return "run the read-only HTTP surface (health, metrics, balance, history)" }
func (*serveCmd) Usage() string {
	return `serve [-addr :8080]

  Applies pending migrations (unless RUN_MIGRATIONS=false), logs the current
  balance and serves until interrupted. Storage outages degrade the views
  instead of stopping the process.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address. Overrides HTTP_ADDR.")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	logger := buildLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	if c.addr != "" {
		cfg.HTTPAddr = c.addr
	}

	if cfg.StorageBackend == config.BackendPostgres && cfg.RunMigrations && cfg.DatabaseURL != "" {
		applied, err := pgstore.Migrate(cfg.DatabaseURL)
		if err != nil {
			logger.Error("migrations failed; continuing", "err", err)
		} else {
			logger.Info("migrations checked", "applied", applied)
		}
	}

	a := wire(ctx, cfg, logger)
	defer a.Close()

	b, err := a.journal.Balance(ctx)
	logger.Info("ledger balance at startup",
		"status", b.Status,
		"income", b.Income.String(),
		"expenses", b.Expenses.String(),
		"net", b.Net.String(),
		"err", err,
	)

	if err := serve(ctx, a); err != nil {
		logger.Error("server error", "err", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, a *app) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           httpapi.New(a.journal, a.participants, a.store, a.log).Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info("ledger service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		a.log.Info("server stopped")
		return nil
	})
	return g.Wait()
}

type migrateCmd struct{}

func (*migrateCmd) Name() string { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply pending database migrations" }
func (*migrateCmd) Usage() string {
	return `migrate

  Applies the embedded schema migrations to DATABASE_URL.
`
}
func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	applied, err := pgstore.Migrate(cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if applied {
		fmt.Println("migrations applied")
	} else {
		fmt.Println("schema up to date")
	}
	return subcommands.ExitSuccess
}
