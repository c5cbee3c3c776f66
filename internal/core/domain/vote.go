package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vote is the ledger record behind the dedup invariant: for a given poll both
// (poll, fingerprint) and (poll, ip address) must stay unique. Records are
// immutable and never deleted.
type Vote struct {
	ID          uuid.UUID
	PollID      string
	OptionIndex int
	Fingerprint string
	IPAddress   string
	CreatedAt   time.Time
}
