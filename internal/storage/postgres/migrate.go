package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	migrate "github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies all pending up migrations embedded in the binary.
// It reports whether anything was applied.
func Migrate(dsn string) (bool, error) {
	dsn = NormalizeDSN(dsn)
	if dsn == "" {
		return false, errors.New("migrate: no connection string configured")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return false, fmt.Errorf("migrate: open: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return false, fmt.Errorf("migrate: ping: %w", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return false, fmt.Errorf("migrate: driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return false, fmt.Errorf("migrate: source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return false, fmt.Errorf("migrate: init: %w", err)
	}

	upErr := m.Up()
	srcErr, dbErr := m.Close()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return false, fmt.Errorf("migrate: up: %w", upErr)
	}
	if srcErr != nil {
		return false, fmt.Errorf("migrate: close source: %w", srcErr)
	}
	if dbErr != nil {
		return false, fmt.Errorf("migrate: close database: %w", dbErr)
	}
	return upErr == nil, nil
}
