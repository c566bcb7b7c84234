package ledger

import (
    "fmt"
    "strings"
    "time"

    "github.com/govalues/money"
)

// Kind is the side of the ledger an entry lands on.
// The zero value is not a valid kind.
type Kind uint8

const (
    // KindIncome adds to the group's funds.
    KindIncome Kind = iota + 1
    // KindExpense draws from the group's funds.
    KindExpense
)

// String returns the persisted form of the kind ("income" or "expense").
func (k Kind) String() string {
    switch k {
    case KindIncome:
        return "income"
    case KindExpense:
        return "expense"
    default:
        return "invalid"
    }
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool { return k == KindIncome || k == KindExpense }

// ParseKind maps the persisted/textual form back to a Kind.
func ParseKind(s string) (Kind, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "income":
        return KindIncome, nil
    case "expense":
        return KindExpense, nil
    default:
        return 0, fmt.Errorf("unknown entry kind %q", s)
    }
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
    if !k.Valid() { return nil, fmt.Errorf("invalid entry kind %d", uint8(k)) }
    return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
    v, err := ParseKind(string(b))
    if err != nil { return err }
    *k = v
    return nil
}

// History bounds used by callers; the history reader imposes no ceiling itself.
const (
    InteractiveHistoryLimit = 10
    StatementLimit          = 50
)

// EntryIDLength is the length of generated entry identifiers.
const EntryIDLength = 8

// Entry is one posted income or expense record. Entries are append-only.
type Entry struct {
    ID          string
    Kind        Kind
    Amount      money.Amount
    Description string
    ActorID     string
    // ActorName is the poster's display name at the time of posting.
    ActorName     string
    AttachmentRef *string
    CreatedAt     time.Time
    // Seq is the storage insertion sequence, used to break CreatedAt ties.
    Seq int64
}

// Signed returns the amount with expenses negated.
func (e Entry) Signed() money.Amount {
    if e.Kind == KindExpense { return e.Amount.Neg() }
    return e.Amount
}

// Participant is an identified contributor to the ledger.
type Participant struct {
    ID          string
    Handle      *string
    DisplayName string
    FirstSeenAt time.Time
}

// BalanceStatus flags whether a Balance reflects storage or is a degraded zero.
type BalanceStatus string

const (
    BalanceOK          BalanceStatus = "ok"
    BalanceUnavailable BalanceStatus = "unavailable"
)

// Balance is the income/expense aggregate over the whole ledger.
type Balance struct {
    Income   money.Amount
    Expenses money.Amount
    Net      money.Amount
    Status   BalanceStatus
}

// ZeroBalance returns an all-zero balance in curr with the given status.
func ZeroBalance(curr string, status BalanceStatus) Balance {
    zero, _ := money.NewAmountFromMinorUnits(curr, 0)
    return Balance{Income: zero, Expenses: zero, Net: zero, Status: status}
}

// NewBalance builds an OK balance from minor-unit totals.
func NewBalance(curr string, incomeMinor, expenseMinor int64) (Balance, error) {
    income, err := money.NewAmountFromMinorUnits(curr, incomeMinor)
    if err != nil { return Balance{}, err }
    expenses, err := money.NewAmountFromMinorUnits(curr, expenseMinor)
    if err != nil { return Balance{}, err }
    net, err := income.Sub(expenses)
    if err != nil { return Balance{}, err }
    return Balance{Income: income, Expenses: expenses, Net: net, Status: BalanceOK}, nil
}
