// Package memory provides an in-memory ledger store used for development and tests.
// It mirrors the postgres store's contract: unique entry ids, server-assigned
// CreatedAt/Seq, upsert-by-id participants.
package memory

import (
    "context"
    "sort"
    "sync"
    "time"

    "github.com/tinoosan/groupledger/internal/errs"
    "github.com/tinoosan/groupledger/internal/ledger"
)

// Store is guarded by an RWMutex for concurrent reads/writes.
type Store struct {
    mu           sync.RWMutex
    entries      []ledger.Entry // insertion order
    ids          map[string]struct{}
    participants map[string]ledger.Participant
    seq          int64
    lastAt       time.Time
    now          func() time.Time
    // fail, when set, is returned by every call (fault injection for tests).
    fail error
}

// New constructs an empty in-memory store.
func New() *Store {
    return &Store{
        ids:          make(map[string]struct{}),
        participants: make(map[string]ledger.Participant),
        now:          func() time.Time { return time.Now().UTC() },
    }
}

// WithClock replaces the time source; used by tests to force timestamp ties.
func (s *Store) WithClock(now func() time.Time) *Store { s.mu.Lock(); s.now = now; s.mu.Unlock(); return s }

// Fail makes every subsequent call return err; Fail(nil) restores normal operation.
func (s *Store) Fail(err error) { s.mu.Lock(); s.fail = err; s.mu.Unlock() }

// Ready implements the readiness probe.
func (s *Store) Ready(_ context.Context) error {
    s.mu.RLock(); defer s.mu.RUnlock()
    return s.fail
}

func (s *Store) Close() {}

// InsertEntry appends e, assigning Seq and a non-decreasing CreatedAt.
func (s *Store) InsertEntry(_ context.Context, e ledger.Entry) (ledger.Entry, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.fail != nil { return ledger.Entry{}, s.fail }
    if _, taken := s.ids[e.ID]; taken {
        return ledger.Entry{}, &errs.Error{Kind: errs.ErrIDCollision, Op: "insert entry"}
    }
    at := s.now()
    if at.Before(s.lastAt) { at = s.lastAt }
    s.lastAt = at
    s.seq++
    e.Seq = s.seq
    e.CreatedAt = at
    e.AttachmentRef = cloneStr(e.AttachmentRef)
    s.entries = append(s.entries, e)
    s.ids[e.ID] = struct{}{}
    return e, nil
}

// SumByKind returns income and expense totals in minor units.
func (s *Store) SumByKind(_ context.Context) (income, expenses int64, err error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    if s.fail != nil { return 0, 0, s.fail }
    for _, e := range s.entries {
        switch e.Kind {
        case ledger.KindIncome:
            income += ledger.MinorUnits(e.Amount)
        case ledger.KindExpense:
            expenses += ledger.MinorUnits(e.Amount)
        }
    }
    return income, expenses, nil
}

// RecentEntries returns up to limit entries, newest first (CreatedAt desc, Seq desc).
func (s *Store) RecentEntries(_ context.Context, limit int) ([]ledger.Entry, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    if s.fail != nil { return nil, s.fail }
    n := len(s.entries)
    if limit < n { n = max(limit, 0) }
    out := make([]ledger.Entry, 0, n)
    // entries are appended with non-decreasing CreatedAt, so reverse insertion order is the sort order
    for i := len(s.entries) - 1; i >= 0 && len(out) < n; i-- {
        e := s.entries[i]
        e.AttachmentRef = cloneStr(e.AttachmentRef)
        out = append(out, e)
    }
    return out, nil
}

// UpsertParticipant inserts p or refreshes its handle and display name.
func (s *Store) UpsertParticipant(_ context.Context, p ledger.Participant) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.fail != nil { return s.fail }
    existing, ok := s.participants[p.ID]
    if ok {
        existing.Handle = cloneStr(p.Handle)
        existing.DisplayName = p.DisplayName
        s.participants[p.ID] = existing
        return nil
    }
    p.Handle = cloneStr(p.Handle)
    p.FirstSeenAt = s.now()
    s.participants[p.ID] = p
    return nil
}

// ListParticipants returns all participants ordered by FirstSeenAt then ID.
func (s *Store) ListParticipants(_ context.Context) ([]ledger.Participant, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    if s.fail != nil { return nil, s.fail }
    out := make([]ledger.Participant, 0, len(s.participants))
    for _, p := range s.participants {
        p.Handle = cloneStr(p.Handle)
        out = append(out, p)
    }
    sort.Slice(out, func(i, j int) bool {
        if !out[i].FirstSeenAt.Equal(out[j].FirstSeenAt) { return out[i].FirstSeenAt.Before(out[j].FirstSeenAt) }
        return out[i].ID < out[j].ID
    })
    return out, nil
}

func cloneStr(p *string) *string {
    if p == nil { return nil }
    v := *p
    return &v
}
