package ledger

import (
	"encoding/base32"

	"github.com/google/uuid"
)

var idEncoding = base32.NewEncoding("0123456789abcdefghijklmnopqrstuv").WithPadding(base32.NoPadding)

// NewEntryID returns an 8-character token built from the first 40 random bits
// of a v4 UUID. Uniqueness is enforced by storage; collisions are retried.
func NewEntryID() string {
	u := uuid.New()
	return idEncoding.EncodeToString(u[:5])
}
