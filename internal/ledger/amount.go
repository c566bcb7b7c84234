package ledger

import (
	"errors"
	"strings"

	"github.com/govalues/money"
)

// ParseAmount parses a user-supplied decimal such as "250" or "99.50" in curr.
func ParseAmount(curr, s string) (money.Amount, error) {
	return money.ParseAmount(curr, strings.TrimSpace(s))
}

// CheckAmount enforces the entry amount rules: positive and representable
// in the currency's minor units without rounding.
func CheckAmount(a money.Amount) error {
	if !a.IsPos() {
		return errors.New("must be > 0")
	}
	units, ok := a.MinorUnits()
	if !ok {
		return errors.New("out of range")
	}
	back, err := money.NewAmountFromMinorUnits(a.Curr().Code(), units)
	if err != nil {
		return err
	}
	if back.Decimal().Cmp(a.Decimal()) != 0 {
		return errors.New("too many decimal places")
	}
	return nil
}

// MinorUnits returns a's value in minor units; callers run CheckAmount first.
func MinorUnits(a money.Amount) int64 {
	units, _ := a.MinorUnits()
	return units
}
