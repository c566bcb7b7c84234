package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tinoosan/groupledger/internal/errs"
	"github.com/tinoosan/groupledger/internal/metrics"
)

// RetryPolicy bounds connection acquisition retries with a fixed backoff.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetry is three attempts two seconds apart.
var DefaultRetry = RetryPolicy{Attempts: 3, Backoff: 2 * time.Second}

// DefaultStatementTimeout bounds a single statement once a connection is held.
const DefaultStatementTimeout = 5 * time.Second

// Stmt is a named SQL statement; the name labels logs and metrics.
type Stmt struct {
	Name string
	SQL  string
}

// Option configures a Gateway.
type Option func(*Gateway)

func WithRetry(p RetryPolicy) Option { return func(g *Gateway) { g.retry = p } }

func WithStatementTimeout(d time.Duration) Option { return func(g *Gateway) { g.timeout = d } }

func WithMaxConns(n int32) Option { return func(g *Gateway) { g.maxConns = n } }

func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}

// Gateway owns the connection pool. Every call acquires its own connection,
// runs exactly one statement (one implicit transaction) and releases it.
// Safe for concurrent use.
type Gateway struct {
	pool     *pgxpool.Pool
	retry    RetryPolicy
	timeout  time.Duration
	maxConns int32
	log      *slog.Logger
}

// Connect normalizes dsn, builds the pool and checks reachability.
// A missing or malformed dsn is reported as errs.ErrStorageUnavailable. An
// unreachable server is only logged: the pool connects lazily and each call
// retries acquisition on its own.
func Connect(ctx context.Context, dsn string, opts ...Option) (*Gateway, error) {
	g := &Gateway{retry: DefaultRetry, timeout: DefaultStatementTimeout, log: slog.Default()}
	for _, o := range opts {
		o(g)
	}
	dsn = NormalizeDSN(dsn)
	if dsn == "" {
		return nil, errs.Unavailable("connect", errors.New("no connection string configured"))
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errs.Unavailable("connect", fmt.Errorf("parse connection string: %w", err))
	}
	if g.maxConns > 0 {
		cfg.MaxConns = g.maxConns
	}
	if cfg.ConnConfig.ConnectTimeout == 0 && g.timeout > 0 {
		cfg.ConnConfig.ConnectTimeout = g.timeout
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errs.Unavailable("connect", err)
	}
	g.pool = pool
	if err := g.Ready(ctx); err != nil {
		g.log.Warn("storage not reachable at startup", "err", err)
	} else {
		g.log.Info("storage connected", "max_conns", cfg.MaxConns)
	}
	return g, nil
}

// NormalizeDSN rewrites legacy and driver-qualified URL schemes to the plain
// postgresql:// scheme. Key/value DSNs pass through untouched.
func NormalizeDSN(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	base, _, _ := strings.Cut(strings.ToLower(scheme), "+")
	if base == "postgres" || base == "postgresql" {
		return "postgresql://" + rest
	}
	return dsn
}

// Close releases the pool.
func (g *Gateway) Close() {
	if g.pool != nil {
		g.pool.Close()
	}
}

// Ready acquires a connection (with retries) and pings it.
func (g *Gateway) Ready(ctx context.Context) error {
	return g.withConn(ctx, "ping", func(ctx context.Context, c *pgxpool.Conn) error {
		if err := c.Ping(ctx); err != nil {
			return errs.Unavailable("ping", err)
		}
		return nil
	})
}

// Exec runs a single write statement and returns the affected row count.
// Statement errors are returned as-is so the caller can decide whether the
// write may have committed.
func (g *Gateway) Exec(ctx context.Context, st Stmt, args ...any) (int64, error) {
	var n int64
	err := g.withConn(ctx, st.Name, func(ctx context.Context, c *pgxpool.Conn) error {
		tag, err := c.Exec(ctx, st.SQL, args...)
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})
	return n, err
}

// Query runs a single statement and hands the rows to scan. Rows are closed
// and the connection released when Query returns.
func (g *Gateway) Query(ctx context.Context, st Stmt, args []any, scan func(pgx.Rows) error) error {
	return g.withConn(ctx, st.Name, func(ctx context.Context, c *pgxpool.Conn) error {
		rows, err := c.Query(ctx, st.SQL, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		if err := scan(rows); err != nil {
			return err
		}
		return rows.Err()
	})
}

// QueryRow runs a single-row statement and scans it into dest.
// pgx.ErrNoRows is returned unchanged.
func (g *Gateway) QueryRow(ctx context.Context, st Stmt, args []any, dest ...any) error {
	return g.withConn(ctx, st.Name, func(ctx context.Context, c *pgxpool.Conn) error {
		return c.QueryRow(ctx, st.SQL, args...).Scan(dest...)
	})
}

func (g *Gateway) withConn(ctx context.Context, op string, fn func(context.Context, *pgxpool.Conn) error) error {
	start := time.Now()
	defer func() { metrics.StorageCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds()) }()

	var conn *pgxpool.Conn
	err := retry(ctx, g.retry, func(ctx context.Context) error {
		c, err := g.pool.Acquire(ctx)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}, func(attempt int, err error) {
		g.log.Warn("storage acquire failed; retrying", "op", op, "attempt", attempt, "backoff", g.retry.Backoff.String(), "err", err)
	})
	if err != nil {
		g.log.Error("storage unavailable", "op", op, "err", err)
		return errs.Unavailable(op, err)
	}
	defer conn.Release()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return fn(ctx, conn)
}

// readErr classifies a failed read: timeouts and broken connections count as
// storage unavailability, anything else is returned wrapped with op.
func readErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errs.ErrStorageUnavailable) {
		return err
	}
	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Unavailable(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
