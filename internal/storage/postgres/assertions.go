package postgres

import (
	"github.com/tinoosan/groupledger/internal/service/journal"
	"github.com/tinoosan/groupledger/internal/service/participant"
)

var (
	_ journal.Repo       = (*Store)(nil)
	_ journal.Writer     = (*Store)(nil)
	_ participant.Repo   = (*Store)(nil)
	_ participant.Writer = (*Store)(nil)
)
