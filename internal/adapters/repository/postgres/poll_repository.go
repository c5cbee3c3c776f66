package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vncsmyrnk/livepoll/internal/core/domain"
	"github.com/vncsmyrnk/livepoll/internal/core/ports"
)

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

func (r *pollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", domain.ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	queryPoll := `
		INSERT INTO polls (id, question, created_at)
		VALUES ($1, $2, $3)
	`
	_, err = tx.ExecContext(ctx, queryPoll, poll.ID, poll.Question, poll.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to insert poll: %v", domain.ErrStorageUnavailable, err)
	}

	queryOption := `
		INSERT INTO poll_options (poll_id, option_index, text, votes)
		VALUES ($1, $2, $3, $4)
	`
	stmt, err := tx.PrepareContext(ctx, queryOption)
	if err != nil {
		return fmt.Errorf("%w: failed to prepare option statement: %v", domain.ErrStorageUnavailable, err)
	}
	defer stmt.Close()

	for i, opt := range poll.Options {
		_, err = stmt.ExecContext(ctx, poll.ID, i, opt.Text, opt.Votes)
		if err != nil {
			return fmt.Errorf("%w: failed to insert option: %v", domain.ErrStorageUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %v", domain.ErrStorageUnavailable, err)
	}

	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id string) (*domain.Poll, error) {
	queryPoll := `
		SELECT id, question, created_at
		FROM polls
		WHERE id = $1
	`

	var poll domain.Poll
	err := r.db.QueryRowContext(ctx, queryPoll, id).Scan(&poll.ID, &poll.Question, &poll.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("%w: failed to get poll: %v", domain.ErrStorageUnavailable, err)
	}

	options, err := r.fetchOptions(ctx, poll.ID)
	if err != nil {
		return nil, err
	}
	poll.Options = options

	return &poll, nil
}

func (r *pollRepository) GetAll(ctx context.Context) ([]*domain.Poll, error) {
	query := `
		SELECT id, question, created_at
		FROM polls
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get all polls: %v", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var polls []*domain.Poll
	for rows.Next() {
		var poll domain.Poll
		if err := rows.Scan(&poll.ID, &poll.Question, &poll.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan poll: %v", domain.ErrStorageUnavailable, err)
		}
		polls = append(polls, &poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating polls: %v", domain.ErrStorageUnavailable, err)
	}

	for _, poll := range polls {
		options, err := r.fetchOptions(ctx, poll.ID)
		if err != nil {
			return nil, err
		}
		poll.Options = options
	}

	return polls, nil
}

// fetchOptions preserves creation order; option_index is the stable reference
// votes are keyed by.
func (r *pollRepository) fetchOptions(ctx context.Context, pollID string) ([]domain.Option, error) {
	queryOptions := `
		SELECT text, votes
		FROM poll_options
		WHERE poll_id = $1
		ORDER BY option_index
	`
	rows, err := r.db.QueryContext(ctx, queryOptions, pollID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get poll options: %v", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var options []domain.Option
	for rows.Next() {
		var opt domain.Option
		if err := rows.Scan(&opt.Text, &opt.Votes); err != nil {
			return nil, fmt.Errorf("%w: failed to scan option: %v", domain.ErrStorageUnavailable, err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating options: %v", domain.ErrStorageUnavailable, err)
	}
	return options, nil
}
