package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vncsmyrnk/livepoll/internal/core/domain"
	"github.com/vncsmyrnk/livepoll/internal/core/ports"
)

type reconcileRepository struct {
	db *sql.DB
}

func NewReconcileRepository(db *sql.DB) ports.ReconcileRepository {
	return &reconcileRepository{
		db: db,
	}
}

func (r *reconcileRepository) Recount(ctx context.Context, pollID string) error {
	query := `
		UPDATE poll_options o
		SET votes = (
			SELECT COUNT(*)
			FROM votes v
			WHERE v.poll_id = o.poll_id AND v.option_index = o.option_index
		)
		WHERE o.poll_id = $1
	`
	_, err := r.db.ExecContext(ctx, query, pollID)
	if err != nil {
		return fmt.Errorf("%w: failed to recount poll %s: %v", domain.ErrStorageUnavailable, pollID, err)
	}
	return nil
}
