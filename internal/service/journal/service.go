// Package journal implements the ledger's write path and its derived reads:
// recording entries, the running balance and recent history.
package journal

import (
    "context"
    "errors"
    "log/slog"
    "strings"

    "github.com/go-playground/validator/v10"
    "github.com/govalues/money"

    "github.com/tinoosan/groupledger/internal/errs"
    "github.com/tinoosan/groupledger/internal/events"
    "github.com/tinoosan/groupledger/internal/ledger"
    "github.com/tinoosan/groupledger/internal/metrics"
)

// MaxIDAttempts bounds how many fresh ids RecordEntry tries before giving up.
const MaxIDAttempts = 5

// Repo defines read operations needed by the service.
type Repo interface {
    SumByKind(ctx context.Context) (income, expenses int64, err error)
    RecentEntries(ctx context.Context, limit int) ([]ledger.Entry, error)
}

// Writer defines write operations needed by the service.
type Writer interface {
    InsertEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error)
}

// RecordInput is what a caller supplies to post an entry.
type RecordInput struct {
    Kind          ledger.Kind  `validate:"-"`
    Amount        money.Amount `validate:"-"`
    Description   string  `validate:"required,max=500"`
    ActorID       string  `validate:"required,max=50"`
    ActorName     string  `validate:"required,max=100"`
    AttachmentRef *string `validate:"omitempty,max=200"`
}

// Service exposes entry recording and the aggregates derived from all committed entries.
type Service interface {
    RecordEntry(ctx context.Context, in RecordInput) (ledger.Entry, error)
    Balance(ctx context.Context) (ledger.Balance, error)
    Recent(ctx context.Context, limit int) ([]ledger.Entry, error)
    Reset(ctx context.Context) error
}

type service struct {
    repo     Repo
    writer   Writer
    currency string
    newID    func() string
    pub      events.Publisher
    validate *validator.Validate
    log      *slog.Logger
}

// Option configures the service.
type Option func(*service)

// WithCurrency sets the single ledger currency (default INR).
func WithCurrency(code string) Option { return func(s *service) { s.currency = strings.ToUpper(code) } }

// WithPublisher sets where EntryRecorded events go (default events.Noop).
func WithPublisher(p events.Publisher) Option { return func(s *service) { if p != nil { s.pub = p } } }

// WithIDGenerator replaces ledger.NewEntryID.
func WithIDGenerator(gen func() string) Option { return func(s *service) { if gen != nil { s.newID = gen } } }

func WithLogger(l *slog.Logger) Option { return func(s *service) { if l != nil { s.log = l } } }

func New(repo Repo, writer Writer, opts ...Option) Service {
    s := &service{
        repo:     repo,
        writer:   writer,
        currency: "INR",
        newID:    ledger.NewEntryID,
        pub:      events.Noop{},
        validate: validator.New(validator.WithRequiredStructEnabled()),
        log:      slog.Default(),
    }
    for _, o := range opts { o(s) }
    return s
}

func (s *service) RecordEntry(ctx context.Context, in RecordInput) (ledger.Entry, error) {
    e, err := s.check(in)
    if err != nil {
        s.log.Debug("entry rejected", "actor_id", in.ActorID, "err", err)
        metrics.EntriesRecorded.WithLabelValues(in.Kind.String(), errs.Outcome(err)).Inc()
        return ledger.Entry{}, err
    }

    committed, err := s.insert(ctx, e)
    metrics.EntriesRecorded.WithLabelValues(e.Kind.String(), errs.Outcome(err)).Inc()
    if err != nil {
        s.log.Error("record entry failed", "op", "record_entry", "kind", e.Kind.String(), "actor_id", e.ActorID, "err", err)
        return ledger.Entry{}, err
    }
    s.log.Info("entry recorded", "id", committed.ID, "kind", committed.Kind.String(), "amount", committed.Amount.String(), "actor_id", committed.ActorID)

    // The entry is committed; the caller going away must not stop the notification.
    s.publish(context.WithoutCancel(ctx), committed)
    return committed, nil
}

// check normalizes and validates in, returning the entry to insert (without ID).
func (s *service) check(in RecordInput) (ledger.Entry, error) {
    in.Description = strings.TrimSpace(in.Description)
    in.ActorID = strings.TrimSpace(in.ActorID)
    in.ActorName = strings.TrimSpace(in.ActorName)
    if in.AttachmentRef != nil {
        ref := strings.TrimSpace(*in.AttachmentRef)
        if ref == "" { in.AttachmentRef = nil } else { in.AttachmentRef = &ref }
    }

    if !in.Kind.Valid() { return ledger.Entry{}, errs.Invalid("kind", "must be income or expense") }
    if err := s.validate.Struct(in); err != nil { return ledger.Entry{}, fieldErr(err) }
    if in.Amount.Curr().Code() != s.currency {
        return ledger.Entry{}, errs.Invalid("amount", "currency must be "+s.currency)
    }
    if err := ledger.CheckAmount(in.Amount); err != nil { return ledger.Entry{}, errs.Invalid("amount", err.Error()) }

    return ledger.Entry{
        Kind:          in.Kind,
        Amount:        in.Amount,
        Description:   in.Description,
        ActorID:       in.ActorID,
        ActorName:     in.ActorName,
        AttachmentRef: in.AttachmentRef,
    }, nil
}

// insert assigns a fresh id per attempt; only id collisions are retried.
func (s *service) insert(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
    var last error
    for attempt := 1; attempt <= MaxIDAttempts; attempt++ {
        e.ID = s.newID()
        committed, err := s.writer.InsertEntry(ctx, e)
        switch {
        case err == nil:
            return committed, nil
        case errors.Is(err, errs.ErrIDCollision):
            metrics.IDCollisions.Inc()
            s.log.Warn("entry id collision", "id", e.ID, "attempt", attempt)
            last = err
        case errors.Is(err, errs.ErrStorageUnavailable), errors.Is(err, errs.ErrRecordFailed):
            return ledger.Entry{}, err
        default:
            return ledger.Entry{}, errs.RecordFailed("record_entry", err)
        }
    }
    return ledger.Entry{}, errs.RecordFailed("record_entry", last)
}

func (s *service) publish(ctx context.Context, e ledger.Entry) {
    err := s.pub.Publish(ctx, events.FromEntry(e))
    if err != nil {
        metrics.EventsPublished.WithLabelValues("error").Inc()
        s.log.Warn("publish entry_recorded failed", "id", e.ID, "err", err)
        return
    }
    metrics.EventsPublished.WithLabelValues("ok").Inc()
}

// Balance sums the whole ledger in one storage statement. On failure it
// returns a zero balance marked unavailable together with the error.
func (s *service) Balance(ctx context.Context) (ledger.Balance, error) {
    income, expenses, err := s.repo.SumByKind(ctx)
    if err == nil {
        var b ledger.Balance
        b, err = ledger.NewBalance(s.currency, income, expenses)
        if err == nil {
            metrics.BalanceReads.WithLabelValues(string(ledger.BalanceOK)).Inc()
            return b, nil
        }
    }
    s.log.Error("balance read failed", "op", "balance", "err", err)
    metrics.BalanceReads.WithLabelValues(string(ledger.BalanceUnavailable)).Inc()
    return ledger.ZeroBalance(s.currency, ledger.BalanceUnavailable), err
}

// Recent returns up to limit entries, newest first. No ceiling is applied here.
func (s *service) Recent(ctx context.Context, limit int) ([]ledger.Entry, error) {
    if limit <= 0 { return []ledger.Entry{}, errs.Invalid("limit", "must be > 0") }
    out, err := s.repo.RecentEntries(ctx, limit)
    if err != nil {
        s.log.Error("recent entries read failed", "op", "recent_entries", "limit", limit, "err", err)
        return []ledger.Entry{}, err
    }
    if out == nil { out = []ledger.Entry{} }
    return out, nil
}

// Reset never clears the ledger; history is append-only.
func (s *service) Reset(context.Context) error {
    s.log.Info("reset requested; ledger reset is disabled")
    return errs.ErrResetDisabled
}

func fieldErr(err error) error {
    var ves validator.ValidationErrors
    if errors.As(err, &ves) && len(ves) > 0 {
        fe := ves[0]
        field := snake(fe.Field())
        switch fe.Tag() {
        case "required":
            return errs.Invalid(field, "required")
        case "max":
            return errs.Invalid(field, "at most "+fe.Param()+" characters")
        default:
            return errs.Invalid(field, "failed "+fe.Tag())
        }
    }
    return errs.Invalid("", err.Error())
}

var fieldNames = map[string]string{
    "Description":   "description",
    "ActorID":       "actor_id",
    "ActorName":     "actor_name",
    "AttachmentRef": "attachment_ref",
}

func snake(f string) string {
    if n, ok := fieldNames[f]; ok { return n }
    return strings.ToLower(f)
}
