package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/vncsmyrnk/livepoll/internal/core/domain"
	"github.com/vncsmyrnk/livepoll/internal/core/ports"
)

const pqUniqueViolation = "23505"

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteRepository {
	return &voteRepository{
		db: db,
	}
}

// CommitVote inserts the ledger record and increments the option counter in
// one transaction. Dedup rides on the unique indexes over
// (poll_id, fingerprint) and (poll_id, ip_address): concurrent submissions
// sharing either key race on the insert and exactly one wins.
func (r *voteRepository) CommitVote(ctx context.Context, vote *domain.Vote) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", domain.ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	queryVote := `
		INSERT INTO votes (id, poll_id, option_index, fingerprint, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.ExecContext(ctx, queryVote,
		vote.ID, vote.PollID, vote.OptionIndex, vote.Fingerprint, vote.IPAddress, vote.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return domain.ErrDuplicateVote
		}
		return fmt.Errorf("%w: failed to insert vote: %v", domain.ErrStorageUnavailable, err)
	}

	queryIncrement := `
		UPDATE poll_options
		SET votes = votes + 1
		WHERE poll_id = $1 AND option_index = $2
	`
	result, err := tx.ExecContext(ctx, queryIncrement, vote.PollID, vote.OptionIndex)
	if err != nil {
		return fmt.Errorf("%w: failed to increment option: %v", domain.ErrStorageUnavailable, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to read increment result: %v", domain.ErrStorageUnavailable, err)
	}
	if affected == 0 {
		return domain.ErrInvalidOption
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit vote: %v", domain.ErrStorageUnavailable, err)
	}

	return nil
}

func (r *voteRepository) HasVoted(ctx context.Context, pollID, fingerprint, ipAddress string) (bool, error) {
	query := `
		SELECT 1 FROM votes
		WHERE poll_id = $1 AND (fingerprint = $2 OR ip_address = $3)
		LIMIT 1
	`
	var exists int
	err := r.db.QueryRowContext(ctx, query, pollID, fingerprint, ipAddress).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to check existing vote: %v", domain.ErrStorageUnavailable, err)
	}
	return true, nil
}
