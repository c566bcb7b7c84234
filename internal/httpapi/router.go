// Package httpapi wires the read-only HTTP surface of the ledger: health,
// metrics and the derived views (balance, history, roster, statement).
// Writes stay in-process; there are no mutating routes.
package httpapi

import (
    "context"
    "log/slog"
    "net/http"
    "time"

    chi "github.com/go-chi/chi/v5"
    chimw "github.com/go-chi/chi/v5/middleware"

    "github.com/tinoosan/groupledger/internal/service/journal"
    "github.com/tinoosan/groupledger/internal/service/participant"
)

// ReadyChecker reports whether storage can serve requests.
type ReadyChecker interface {
    Ready(ctx context.Context) error
}

// Server wires handlers and middleware using Chi.
type Server struct {
    journal      journal.Service
    participants participant.Service
    ready        ReadyChecker
    loc          *time.Location
    log          *slog.Logger
    rt           *chi.Mux
}

// Option configures the server.
type Option func(*Server)

// WithLocation sets the zone statement dates are rendered in (default UTC).
func WithLocation(loc *time.Location) Option { return func(s *Server) { if loc != nil { s.loc = loc } } }

// New constructs the HTTP server with routes and middleware.
func New(js journal.Service, ps participant.Service, ready ReadyChecker, logger *slog.Logger, opts ...Option) *Server {
    if logger == nil { logger = slog.Default() }
    r := chi.NewRouter()
    r.Use(chimw.RequestID)
    r.Use(requestLogger(logger))
    r.Use(recoverer(logger))
    r.Use(metricsMiddleware)

    s := &Server{journal: js, participants: ps, ready: ready, loc: time.UTC, log: logger, rt: r}
    for _, o := range opts { o(s) }
    s.routes()
    return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

func (s *Server) routes() {
    // Health (unversioned)
    s.rt.Get("/healthz", s.healthz)
    s.rt.Get("/readyz", s.readyz)
    s.rt.Method(http.MethodGet, "/metrics", metricsHandler())

    s.rt.Route("/v1", func(r chi.Router) {
        r.Get("/balance", s.getBalance)
        r.Get("/entries", s.listEntries)
        r.Get("/participants", s.listParticipants)
        r.Get("/statement", s.getStatement)
    })
}
