package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stamprally/backend/internal/models"
	"github.com/stamprally/backend/internal/repository"
)

type txRunner struct{ s *Store }

// WithTx holds the store's write lock for the whole of fn, so a commit is
// atomic and any guard check inside fn sees the previous winner's state.
func (r *txRunner) WithTx(ctx context.Context, fn func(repository.Tx) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	snap := r.s.snapshot()
	if err := fn(&memTx{r.s}); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}

type storeSnapshot struct {
	accounts map[string]models.Account
	prizes   map[string]models.Prize
	entries  int
	scans    int
}

func (s *Store) snapshot() storeSnapshot {
	accounts := make(map[string]models.Account, len(s.accounts))
	for k, v := range s.accounts {
		accounts[k] = v
	}
	prizes := make(map[string]models.Prize, len(s.prizes))
	for k, v := range s.prizes {
		prizes[k] = v
	}
	return storeSnapshot{accounts: accounts, prizes: prizes, entries: len(s.entries), scans: len(s.scans)}
}

// restore rolls back a failed commit; the append-only slices are simply
// truncated to their pre-commit length.
func (s *Store) restore(snap storeSnapshot) {
	s.accounts = snap.accounts
	s.prizes = snap.prizes
	s.entries = s.entries[:snap.entries]
	s.scans = s.scans[:snap.scans]
}

type memTx struct{ s *Store }

func (t *memTx) AccountForUpdate(ctx context.Context, id string) (models.Account, error) {
	a, ok := t.s.accounts[id]
	if !ok {
		return models.Account{}, repository.ErrNotFound
	}
	return a, nil
}

func (t *memTx) PrizeForUpdate(ctx context.Context, id string) (models.Prize, error) {
	p, ok := t.s.prizes[id]
	if !ok {
		return models.Prize{}, repository.ErrNotFound
	}
	return p, nil
}

func (t *memTx) LastScanAt(ctx context.Context, accountID, tokenID string, since time.Time) (time.Time, bool, error) {
	var last time.Time
	var found bool
	for _, sc := range t.s.scans {
		if sc.AccountID == accountID && sc.TokenID == tokenID && sc.ScannedAt.After(since) {
			if !found || sc.ScannedAt.After(last) {
				last, found = sc.ScannedAt, true
			}
		}
	}
	return last, found, nil
}

func (t *memTx) AddBalance(ctx context.Context, accountID string, delta int64) (int64, error) {
	a, ok := t.s.accounts[accountID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if a.Balance+delta < 0 {
		return 0, repository.ErrConflict
	}
	a.Balance += delta
	a.UpdatedAt = time.Now()
	t.s.accounts[accountID] = a
	return a.Balance, nil
}

func (t *memTx) DecrementStock(ctx context.Context, prizeID string) error {
	p, ok := t.s.prizes[prizeID]
	if !ok {
		return repository.ErrNotFound
	}
	if p.Stock <= 0 {
		return repository.ErrConflict
	}
	p.Stock--
	t.s.prizes[prizeID] = p
	return nil
}

func (t *memTx) AppendEntry(ctx context.Context, e models.LedgerEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	t.s.entries = append(t.s.entries, e)
	return nil
}

func (t *memTx) RecordScan(ctx context.Context, accountID, tokenID string, at time.Time) error {
	t.s.scans = append(t.s.scans, models.ScanRecord{
		ID:        uuid.NewString(),
		AccountID: accountID,
		TokenID:   tokenID,
		ScannedAt: at,
	})
	return nil
}
