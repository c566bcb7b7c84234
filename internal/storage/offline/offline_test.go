package offline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tinoosan/groupledger/internal/errs"
	"github.com/tinoosan/groupledger/internal/ledger"
)

func TestEveryCallIsUnavailable(t *testing.T) {
	ctx := context.Background()
	s := New(errors.New("DATABASE_URL not set"))

	assert.ErrorIs(t, s.Ready(ctx), errs.ErrStorageUnavailable)
	_, err := s.InsertEntry(ctx, ledger.Entry{})
	assert.ErrorIs(t, err, errs.ErrStorageUnavailable)
	_, _, err = s.SumByKind(ctx)
	assert.ErrorIs(t, err, errs.ErrStorageUnavailable)
	_, err = s.RecentEntries(ctx, 10)
	assert.ErrorIs(t, err, errs.ErrStorageUnavailable)
	assert.ErrorIs(t, s.UpsertParticipant(ctx, ledger.Participant{}), errs.ErrStorageUnavailable)
	_, err = s.ListParticipants(ctx)
	assert.ErrorIs(t, err, errs.ErrStorageUnavailable)
}

func TestKeepsUnavailableCause(t *testing.T) {
	cause := errs.Unavailable("connect", errors.New("no connection string configured"))
	s := New(cause)
	assert.Same(t, cause, s.Ready(context.Background()))
}
