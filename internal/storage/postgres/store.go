// Package postgres provides the pgx-backed ledger storage: a Gateway that owns
// the pool and a Store that maps entries and participants to SQL rows.
//
// The schema lives in migrations/ and is embedded into the binary; Migrate
// applies it. Every Store method is a single statement, so two related writes
// (participant upsert, entry insert) are not atomic with respect to each other.
package postgres

import (
    "context"
    "errors"
    "fmt"

    "github.com/govalues/money"
    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgconn"

    "github.com/tinoosan/groupledger/internal/errs"
    "github.com/tinoosan/groupledger/internal/ledger"
)

const uniqueViolation = "23505"

var (
    stmtInsertEntry = Stmt{Name: "insert_entry", SQL: `
        insert into entries (id, kind, amount_minor, description, actor_id, actor_name, attachment_ref)
        values ($1,$2,$3,$4,$5,$6,$7)
        returning seq, created_at`}
    stmtSumByKind = Stmt{Name: "sum_by_kind", SQL: `
        select coalesce(sum(amount_minor) filter (where kind = 'income'), 0)::bigint,
               coalesce(sum(amount_minor) filter (where kind = 'expense'), 0)::bigint
        from entries`}
    stmtRecentEntries = Stmt{Name: "recent_entries", SQL: `
        select id, kind, amount_minor, description, actor_id, actor_name, attachment_ref, created_at, seq
        from entries
        order by created_at desc, seq desc
        limit $1`}
    stmtUpsertParticipant = Stmt{Name: "upsert_participant", SQL: `
        insert into participants (id, handle, display_name)
        values ($1,$2,$3)
        on conflict (id) do update
        set handle = excluded.handle, display_name = excluded.display_name`}
    stmtListParticipants = Stmt{Name: "list_participants", SQL: `
        select id, handle, display_name, first_seen_at
        from participants
        order by first_seen_at asc, id asc`}
)

// Store implements the journal and participant repositories on top of a Gateway.
// All methods are safe for concurrent use.
type Store struct {
    gw       *Gateway
    currency string
}

// NewStore binds a Store to gw. Amounts are read back in currency.
func NewStore(gw *Gateway, currency string) *Store { return &Store{gw: gw, currency: currency} }

// Ready reports whether the database is reachable.
func (s *Store) Ready(ctx context.Context) error { return s.gw.Ready(ctx) }

// Close releases the underlying gateway.
func (s *Store) Close() { s.gw.Close() }

// --- Entry writes ---

// InsertEntry appends e and returns it with Seq and CreatedAt assigned by the server.
// A taken id yields errs.ErrIDCollision; other statement errors are returned as-is.
func (s *Store) InsertEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
    err := s.gw.QueryRow(ctx, stmtInsertEntry,
        []any{e.ID, e.Kind.String(), ledger.MinorUnits(e.Amount), e.Description, e.ActorID, e.ActorName, e.AttachmentRef},
        &e.Seq, &e.CreatedAt)
    if err != nil {
        var pgErr *pgconn.PgError
        if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "entries_id_key" {
            return ledger.Entry{}, &errs.Error{Kind: errs.ErrIDCollision, Op: "insert entry", Err: err}
        }
        return ledger.Entry{}, err
    }
    return e, nil
}

// --- Entry reads ---

// SumByKind returns income and expense totals in minor units from one snapshot.
func (s *Store) SumByKind(ctx context.Context) (income, expenses int64, err error) {
    err = s.gw.QueryRow(ctx, stmtSumByKind, nil, &income, &expenses)
    if err != nil { return 0, 0, readErr("sum by kind", err) }
    return income, expenses, nil
}

// RecentEntries returns up to limit entries, newest first.
func (s *Store) RecentEntries(ctx context.Context, limit int) ([]ledger.Entry, error) {
    out := make([]ledger.Entry, 0, max(0, min(limit, ledger.StatementLimit)))
    err := s.gw.Query(ctx, stmtRecentEntries, []any{limit}, func(rows pgx.Rows) error {
        for rows.Next() {
            var e ledger.Entry
            var kind string
            var minor int64
            if err := rows.Scan(&e.ID, &kind, &minor, &e.Description, &e.ActorID, &e.ActorName, &e.AttachmentRef, &e.CreatedAt, &e.Seq); err != nil {
                return err
            }
            k, err := ledger.ParseKind(kind)
            if err != nil { return fmt.Errorf("entry %s: %w", e.ID, err) }
            e.Kind = k
            amt, err := money.NewAmountFromMinorUnits(s.currency, minor)
            if err != nil { return fmt.Errorf("entry %s: %w", e.ID, err) }
            e.Amount = amt
            out = append(out, e)
        }
        return nil
    })
    if err != nil { return nil, readErr("recent entries", err) }
    return out, nil
}

// --- Participants ---

// UpsertParticipant inserts p or refreshes its handle and display name.
// first_seen_at is only set on insert.
func (s *Store) UpsertParticipant(ctx context.Context, p ledger.Participant) error {
    _, err := s.gw.Exec(ctx, stmtUpsertParticipant, p.ID, p.Handle, p.DisplayName)
    return err
}

// ListParticipants returns all participants in first-seen order.
func (s *Store) ListParticipants(ctx context.Context) ([]ledger.Participant, error) {
    out := make([]ledger.Participant, 0)
    err := s.gw.Query(ctx, stmtListParticipants, nil, func(rows pgx.Rows) error {
        for rows.Next() {
            var p ledger.Participant
            if err := rows.Scan(&p.ID, &p.Handle, &p.DisplayName, &p.FirstSeenAt); err != nil {
                return err
            }
            out = append(out, p)
        }
        return nil
    })
    if err != nil { return nil, readErr("list participants", err) }
    return out, nil
}
