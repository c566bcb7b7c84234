// Package statement renders ledger history as pipe-delimited rows that paste
// straight into a spreadsheet.
package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/tinoosan/groupledger/internal/ledger"
)

// Header is the first row of every statement.
var Header = []string{"Date", "Type", "Amount", "Description", "Added By", "Transaction ID"}

const dateLayout = "2006-01-02 15:04"

// Write renders entries in the order given. Dates are shown in loc (UTC when nil).
// Fields containing the separator or quotes are quoted.
func Write(w io.Writer, entries []ledger.Entry, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	cw := csv.NewWriter(w)
	cw.Comma = '|'
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write(Row(e, loc)); err != nil {
			return fmt.Errorf("write entry %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Row formats one entry. Expense amounts are negative.
func Row(e ledger.Entry, loc *time.Location) []string {
	return []string{
		e.CreatedAt.In(loc).Format(dateLayout),
		typeLabel(e.Kind),
		e.Signed().Decimal().String(),
		e.Description,
		e.ActorName,
		e.ID,
	}
}

func typeLabel(k ledger.Kind) string {
	if k == ledger.KindIncome {
		return "INCOME"
	}
	return "EXPENSE"
}
