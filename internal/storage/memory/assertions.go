package memory

import (
	"github.com/tinoosan/groupledger/internal/service/journal"
	"github.com/tinoosan/groupledger/internal/service/participant"
)

// Compile-time interface assertions documenting which interfaces Store satisfies.
var (
	_ journal.Repo       = (*Store)(nil)
	_ journal.Writer     = (*Store)(nil)
	_ participant.Repo   = (*Store)(nil)
	_ participant.Writer = (*Store)(nil)
)
