// Package offline provides the store used when no database is configured or
// the connection could not be set up. Every call fails with
// errs.ErrStorageUnavailable, so the process keeps running and reads degrade.
package offline

import (
	"context"

	"github.com/tinoosan/groupledger/internal/errs"
	"github.com/tinoosan/groupledger/internal/ledger"
)

// Store fails every call with the cause it was built with.
type Store struct {
	cause error
}

// New returns a Store reporting cause. cause should already match errs.ErrStorageUnavailable;
// if it does not, it is wrapped.
func New(cause error) *Store {
	if cause == nil || !errs.IsUnavailable(cause) {
		cause = errs.Unavailable("connect", cause)
	}
	return &Store{cause: cause}
}

func (s *Store) Ready(context.Context) error { return s.cause }

func (s *Store) Close() {}

func (s *Store) InsertEntry(context.Context, ledger.Entry) (ledger.Entry, error) {
	return ledger.Entry{}, s.cause
}

func (s *Store) SumByKind(context.Context) (int64, int64, error) { return 0, 0, s.cause }

func (s *Store) RecentEntries(context.Context, int) ([]ledger.Entry, error) { return nil, s.cause }

func (s *Store) UpsertParticipant(context.Context, ledger.Participant) error { return s.cause }

func (s *Store) ListParticipants(context.Context) ([]ledger.Participant, error) { return nil, s.cause }
