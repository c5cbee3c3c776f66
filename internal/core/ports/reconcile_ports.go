package ports

import "context"

type ReconcileRepository interface {
	// Recount rewrites the poll's option counters from the vote ledger.
	Recount(ctx context.Context, pollID string) error
}

type ReconcileService interface {
	RecountAll(ctx context.Context) error
}
