package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/vncsmyrnk/livepoll/internal/core/ports"
)

type reconcileService struct {
	pollRepo      ports.PollRepository
	reconcileRepo ports.ReconcileRepository
}

// NewReconcileService builds the batch job that rewrites every poll's option
// counters from the vote ledger. The counters should already match; the job
// exists so that drift is repaired instead of accumulating.
func NewReconcileService(pollRepo ports.PollRepository, reconcileRepo ports.ReconcileRepository) ports.ReconcileService {
	return &reconcileService{
		pollRepo:      pollRepo,
		reconcileRepo: reconcileRepo,
	}
}

func (s *reconcileService) RecountAll(ctx context.Context) error {
	polls, err := s.pollRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch all polls: %w", err)
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(polls))

	for _, poll := range polls {
		wg.Add(1)
		go func(pollID string) {
			defer wg.Done()
			if err := s.reconcileRepo.Recount(ctx, pollID); err != nil {
				errChan <- fmt.Errorf("failed to recount poll %s: %w", pollID, err)
			}
		}(poll.ID)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return err
		}
	}

	return nil
}
