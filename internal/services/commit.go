package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/stamprally/backend/internal/metrics"
	repo "github.com/stamprally/backend/internal/repository"
)

const maxCommitAttempts = 3

// commitWithRetry re-runs the whole guard-check-then-write closure when
// the storage layer reports a conflict, so the losing side of a race
// always re-evaluates against post-commit state. Business failures pass
// through untouched.
func commitWithRetry(ctx context.Context, runner repo.TxRunner, fn func(repo.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		err = runner.WithTx(ctx, fn)
		if err == nil || !errors.Is(err, repo.ErrConflict) {
			return err
		}
		metrics.CommitConflictsTotal.Inc()
	}
	return fmt.Errorf("%w: %v", ErrTransient, err)
}
