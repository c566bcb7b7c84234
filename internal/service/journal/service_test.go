package journal_test

import (
    "context"
    "errors"
    "fmt"
    "io"
    "log/slog"
    "sync"
    "testing"
    "time"

    "github.com/govalues/money"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/sync/errgroup"

    "github.com/tinoosan/groupledger/internal/errs"
    "github.com/tinoosan/groupledger/internal/events"
    "github.com/tinoosan/groupledger/internal/ledger"
    "github.com/tinoosan/groupledger/internal/service/journal"
    "github.com/tinoosan/groupledger/internal/storage/memory"
)

func testLogger() *slog.Logger {
    return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func inr(s string) money.Amount { return money.MustParseAmount("INR", s) }

func input(kind ledger.Kind, amount, desc string) journal.RecordInput {
    return journal.RecordInput{Kind: kind, Amount: inr(amount), Description: desc, ActorID: "1001", ActorName: "Asha"}
}

func newService(store *memory.Store, opts ...journal.Option) journal.Service {
    opts = append([]journal.Option{journal.WithLogger(testLogger())}, opts...)
    return journal.New(store, store, opts...)
}

type recordingPublisher struct {
    mu   sync.Mutex
    got  []events.EntryRecorded
    fail error
}

func (p *recordingPublisher) Publish(ctx context.Context, ev events.EntryRecorded) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.fail != nil { return p.fail }
    p.got = append(p.got, ev)
    return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestSalaryGroceriesTransport(t *testing.T) {
    ctx := context.Background()
    svc := newService(memory.New())

    for _, in := range []journal.RecordInput{
        input(ledger.KindIncome, "1000", "Salary"),
        input(ledger.KindExpense, "250", "Groceries"),
        input(ledger.KindExpense, "100", "Transport"),
    } {
        _, err := svc.RecordEntry(ctx, in)
        require.NoError(t, err)
    }

    b, err := svc.Balance(ctx)
    require.NoError(t, err)
    assert.Equal(t, ledger.BalanceOK, b.Status)
    assert.Equal(t, "1000.00", b.Income.Decimal().String())
    assert.Equal(t, "350.00", b.Expenses.Decimal().String())
    assert.Equal(t, "650.00", b.Net.Decimal().String())

    recent, err := svc.Recent(ctx, 2)
    require.NoError(t, err)
    require.Len(t, recent, 2)
    assert.Equal(t, "Transport", recent[0].Description)
    assert.Equal(t, ledger.KindExpense, recent[0].Kind)
    assert.Equal(t, "Groceries", recent[1].Description)
}

func TestRecordEntryReturnsCommittedEntry(t *testing.T) {
    ref := "  file-abc  "
    in := input(ledger.KindIncome, "99.50", "  Rent share ")
    in.AttachmentRef = &ref

    e, err := newService(memory.New()).RecordEntry(context.Background(), in)
    require.NoError(t, err)
    assert.Len(t, e.ID, ledger.EntryIDLength)
    assert.Equal(t, "Rent share", e.Description)
    assert.Equal(t, "Asha", e.ActorName)
    require.NotNil(t, e.AttachmentRef)
    assert.Equal(t, "file-abc", *e.AttachmentRef)
    assert.False(t, e.CreatedAt.IsZero())
    assert.Equal(t, int64(1), e.Seq)
}

func TestRecordEntryThenBalance(t *testing.T) {
    ctx := context.Background()
    svc := newService(memory.New())
    _, err := svc.RecordEntry(ctx, input(ledger.KindIncome, "40", "Seed"))
    require.NoError(t, err)

    before, err := svc.Balance(ctx)
    require.NoError(t, err)
    _, err = svc.RecordEntry(ctx, input(ledger.KindExpense, "12.25", "Snacks"))
    require.NoError(t, err)
    after, err := svc.Balance(ctx)
    require.NoError(t, err)

    want, err := before.Expenses.Add(inr("12.25"))
    require.NoError(t, err)
    assert.Equal(t, want.Decimal().String(), after.Expenses.Decimal().String())
    assert.Equal(t, before.Income.Decimal().String(), after.Income.Decimal().String())

    net, err := after.Income.Sub(after.Expenses)
    require.NoError(t, err)
    assert.Equal(t, net.Decimal().String(), after.Net.Decimal().String())
}

func TestRecordEntryRejectsInvalidInput(t *testing.T) {
    blank := "   "
    long := make([]byte, 201)
    for i := range long { long[i] = 'x' }
    longRef := string(long)

    cases := []struct {
        name  string
        in    journal.RecordInput
        field string
    }{
        {"zero amount", input(ledger.KindIncome, "0", "Nothing"), "amount"},
        {"negative amount", input(ledger.KindExpense, "-5", "Refund"), "amount"},
        {"fractional paise", input(ledger.KindExpense, "1.005", "Tiny"), "amount"},
        {"other currency", journal.RecordInput{Kind: ledger.KindIncome, Amount: money.MustParseAmount("USD", "5"), Description: "x", ActorID: "1", ActorName: "A"}, "amount"},
        {"empty description", input(ledger.KindExpense, "10", ""), "description"},
        {"blank description", input(ledger.KindExpense, "10", "   "), "description"},
        {"invalid kind", input(ledger.Kind(0), "10", "Mystery"), "kind"},
        {"missing actor", journal.RecordInput{Kind: ledger.KindIncome, Amount: inr("1"), Description: "x", ActorName: "A"}, "actor_id"},
        {"missing actor name", journal.RecordInput{Kind: ledger.KindIncome, Amount: inr("1"), Description: "x", ActorID: "1", ActorName: blank}, "actor_name"},
        {"long attachment", journal.RecordInput{Kind: ledger.KindIncome, Amount: inr("1"), Description: "x", ActorID: "1", ActorName: "A", AttachmentRef: &longRef}, "attachment_ref"},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            store := memory.New()
            svc := newService(store)
            _, err := svc.RecordEntry(context.Background(), tc.in)
            require.ErrorIs(t, err, errs.ErrValidation)
            var ve *errs.ValidationError
            require.ErrorAs(t, err, &ve)
            assert.Equal(t, tc.field, ve.Field)

            b, err := svc.Balance(context.Background())
            require.NoError(t, err)
            assert.True(t, b.Income.IsZero())
            assert.True(t, b.Expenses.IsZero())
        })
    }
}

func TestRecordEntryRetriesIDCollision(t *testing.T) {
    ctx := context.Background()
    store := memory.New()
    ids := []string{"aaaaaaaa", "aaaaaaaa", "aaaaaaaa", "bbbbbbbb"}
    var i int
    gen := func() string { id := ids[i]; i++; return id }
    svc := newService(store, journal.WithIDGenerator(gen))

    first, err := svc.RecordEntry(ctx, input(ledger.KindIncome, "10", "First"))
    require.NoError(t, err)
    assert.Equal(t, "aaaaaaaa", first.ID)

    second, err := svc.RecordEntry(ctx, input(ledger.KindIncome, "20", "Second"))
    require.NoError(t, err)
    assert.Equal(t, "bbbbbbbb", second.ID)
    assert.Equal(t, 4, i)
}

func TestRecordEntryGivesUpAfterRepeatedCollisions(t *testing.T) {
    ctx := context.Background()
    svc := newService(memory.New(), journal.WithIDGenerator(func() string { return "samesame" }))

    _, err := svc.RecordEntry(ctx, input(ledger.KindIncome, "10", "First"))
    require.NoError(t, err)
    _, err = svc.RecordEntry(ctx, input(ledger.KindIncome, "10", "Second"))
    require.ErrorIs(t, err, errs.ErrRecordFailed)
    assert.NotErrorIs(t, err, errs.ErrStorageUnavailable)

    b, err := svc.Balance(ctx)
    require.NoError(t, err)
    assert.Equal(t, "10.00", b.Income.Decimal().String())
}

func TestRecordEntryStorageFailures(t *testing.T) {
    ctx := context.Background()

    t.Run("unavailable", func(t *testing.T) {
        store := memory.New()
        store.Fail(errs.Unavailable("acquire", errors.New("connection refused")))
        _, err := newService(store).RecordEntry(ctx, input(ledger.KindIncome, "10", "x"))
        assert.ErrorIs(t, err, errs.ErrStorageUnavailable)
    })
    t.Run("statement error", func(t *testing.T) {
        store := memory.New()
        store.Fail(errors.New("check constraint violated"))
        _, err := newService(store).RecordEntry(ctx, input(ledger.KindIncome, "10", "x"))
        assert.ErrorIs(t, err, errs.ErrRecordFailed)
        assert.Contains(t, err.Error(), "check constraint violated")
    })
}

func TestRecordEntryPublishes(t *testing.T) {
    ctx, cancel := context.WithCancel(context.Background())
    pub := &recordingPublisher{}
    svc := newService(memory.New(), journal.WithPublisher(pub))

    e, err := svc.RecordEntry(ctx, input(ledger.KindExpense, "75", "Tea"))
    require.NoError(t, err)
    cancel()

    require.Len(t, pub.got, 1)
    assert.Equal(t, e.ID, pub.got[0].ID)
    assert.Equal(t, "expense", pub.got[0].Kind)
    assert.Equal(t, int64(7500), pub.got[0].AmountMinor)
}

func TestRecordEntrySucceedsWhenPublishFails(t *testing.T) {
    pub := &recordingPublisher{fail: errors.New("broker down")}
    svc := newService(memory.New(), journal.WithPublisher(pub))
    e, err := svc.RecordEntry(context.Background(), input(ledger.KindIncome, "5", "Tip"))
    require.NoError(t, err)
    assert.NotEmpty(t, e.ID)
}

func TestBalanceDegradesWhenUnavailable(t *testing.T) {
    store := memory.New()
    svc := newService(store)
    _, err := svc.RecordEntry(context.Background(), input(ledger.KindIncome, "10", "x"))
    require.NoError(t, err)

    store.Fail(errs.Unavailable("acquire", errors.New("timeout")))
    b, err := svc.Balance(context.Background())
    require.ErrorIs(t, err, errs.ErrStorageUnavailable)
    assert.Equal(t, ledger.BalanceUnavailable, b.Status)
    assert.True(t, b.Income.IsZero())
    assert.True(t, b.Net.IsZero())
    assert.Equal(t, "INR", b.Net.Curr().Code())
}

func TestRecent(t *testing.T) {
    ctx := context.Background()
    store := memory.New()
    svc := newService(store)

    empty, err := svc.Recent(ctx, ledger.InteractiveHistoryLimit)
    require.NoError(t, err)
    assert.NotNil(t, empty)
    assert.Empty(t, empty)

    for i := 1; i <= 12; i++ {
        _, err := svc.RecordEntry(ctx, input(ledger.KindIncome, fmt.Sprint(i), fmt.Sprintf("e%d", i)))
        require.NoError(t, err)
    }

    got, err := svc.Recent(ctx, ledger.InteractiveHistoryLimit)
    require.NoError(t, err)
    require.Len(t, got, 10)
    assert.Equal(t, "e12", got[0].Description)
    assert.Equal(t, "e3", got[9].Description)
    for i := 1; i < len(got); i++ {
        assert.False(t, got[i].CreatedAt.After(got[i-1].CreatedAt))
    }

    all, err := svc.Recent(ctx, 1000)
    require.NoError(t, err)
    assert.Len(t, all, 12)

    for _, bad := range []int{0, -1} {
        out, err := svc.Recent(ctx, bad)
        assert.ErrorIs(t, err, errs.ErrValidation)
        assert.NotNil(t, out)
        assert.Empty(t, out)
    }

    store.Fail(errs.Unavailable("acquire", errors.New("down")))
    out, err := svc.Recent(ctx, 5)
    assert.ErrorIs(t, err, errs.ErrStorageUnavailable)
    assert.NotNil(t, out)
    assert.Empty(t, out)
}

func TestRecentBreaksTimestampTies(t *testing.T) {
    ctx := context.Background()
    fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
    store := memory.New().WithClock(func() time.Time { return fixed })
    svc := newService(store)

    for _, d := range []string{"a", "b", "c"} {
        _, err := svc.RecordEntry(ctx, input(ledger.KindExpense, "1", d))
        require.NoError(t, err)
    }
    got, err := svc.Recent(ctx, 3)
    require.NoError(t, err)
    require.Len(t, got, 3)
    assert.Equal(t, []string{"c", "b", "a"}, []string{got[0].Description, got[1].Description, got[2].Description})
    assert.Greater(t, got[0].Seq, got[1].Seq)
}

func TestConcurrentWriters(t *testing.T) {
    const n = 50
    ctx := context.Background()
    svc := newService(memory.New())

    var g errgroup.Group
    ids := make([]string, n)
    for i := 0; i < n; i++ {
        i := i
        g.Go(func() error {
            kind := ledger.KindIncome
            if i%2 == 1 { kind = ledger.KindExpense }
            e, err := svc.RecordEntry(ctx, input(kind, fmt.Sprint(i+1), fmt.Sprintf("w%d", i)))
            ids[i] = e.ID
            return err
        })
    }
    require.NoError(t, g.Wait())

    seen := make(map[string]struct{}, n)
    for _, id := range ids {
        _, dup := seen[id]
        assert.False(t, dup, "duplicate id %s", id)
        seen[id] = struct{}{}
    }

    var wantIncome, wantExpense int64
    for i := 0; i < n; i++ {
        if i%2 == 1 { wantExpense += int64(i+1) * 100 } else { wantIncome += int64(i+1) * 100 }
    }
    b, err := svc.Balance(ctx)
    require.NoError(t, err)
    assert.Equal(t, wantIncome, ledger.MinorUnits(b.Income))
    assert.Equal(t, wantExpense, ledger.MinorUnits(b.Expenses))
    assert.Equal(t, wantIncome-wantExpense, ledger.MinorUnits(b.Net))
}

func TestResetIsDisabled(t *testing.T) {
    ctx := context.Background()
    svc := newService(memory.New())
    _, err := svc.RecordEntry(ctx, input(ledger.KindIncome, "10", "Keep me"))
    require.NoError(t, err)

    assert.ErrorIs(t, svc.Reset(ctx), errs.ErrResetDisabled)
    got, err := svc.Recent(ctx, 10)
    require.NoError(t, err)
    assert.Len(t, got, 1)
}
