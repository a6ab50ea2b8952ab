// Package memory is the storage backend used when no DATABASE_URL is
// configured (local development) and by the test suite. Commits are
// serialized behind a single mutex, which trivially satisfies the same
// atomicity contract the postgres backend provides with row locks.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stamprally/backend/internal/models"
	"github.com/stamprally/backend/internal/repository"
)

type Store struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
	tokens   map[string]models.Token
	prizes   map[string]models.Prize
	entries  []models.LedgerEntry
	scans    []models.ScanRecord
	audits   []models.AuditLog
}

func NewRepositories() repository.Repositories {
	s := &Store{
		accounts: map[string]models.Account{},
		tokens:   map[string]models.Token{},
		prizes:   map[string]models.Prize{},
	}
	return repository.Repositories{
		Accounts:  &accountsRepo{s},
		Tokens:    &tokensRepo{s},
		Prizes:    &prizesRepo{s},
		Ledger:    &ledgerRepo{s},
		AuditLogs: &auditLogsRepo{s},
		Tx:        &txRunner{s},
	}
}

// ---- accounts ----

type accountsRepo struct{ s *Store }

func (r *accountsRepo) Create(ctx context.Context, a models.Account) (models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.accounts {
		if strings.EqualFold(existing.Username, a.Username) {
			return models.Account{}, repository.ErrDuplicate
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	r.s.accounts[a.ID] = a
	return a, nil
}

func (r *accountsRepo) GetByID(ctx context.Context, id string) (models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return models.Account{}, repository.ErrNotFound
	}
	return a, nil
}

func (r *accountsRepo) GetByUsername(ctx context.Context, username string) (models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return models.Account{}, repository.ErrNotFound
}

func (r *accountsRepo) List(ctx context.Context) ([]models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Account, 0, len(r.s.accounts))
	for _, a := range r.s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Balance != out[j].Balance {
			return out[i].Balance > out[j].Balance
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *accountsRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.PasswordHash = passwordHash
	a.UpdatedAt = time.Now()
	r.s.accounts[id] = a
	return nil
}

func (r *accountsRepo) HasAdmin(ctx context.Context) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.accounts {
		if a.Role == "admin" {
			return true, nil
		}
	}
	return false, nil
}

// ---- tokens ----

type tokensRepo struct{ s *Store }

func (r *tokensRepo) Create(ctx context.Context, t models.Token) (models.Token, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.tokens {
		if existing.Code == t.Code {
			return models.Token{}, repository.ErrDuplicate
		}
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now()
	r.s.tokens[t.ID] = t
	return t, nil
}

func (r *tokensRepo) GetByID(ctx context.Context, id string) (models.Token, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tokens[id]
	if !ok {
		return models.Token{}, repository.ErrNotFound
	}
	return t, nil
}

func (r *tokensRepo) GetByCode(ctx context.Context, code string) (models.Token, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, t := range r.s.tokens {
		if t.Code == code {
			return t, nil
		}
	}
	return models.Token{}, repository.ErrNotFound
}

func (r *tokensRepo) List(ctx context.Context) ([]models.Token, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Token, 0, len(r.s.tokens))
	for _, t := range r.s.tokens {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *tokensRepo) SetActive(ctx context.Context, id string, active bool) (models.Token, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[id]
	if !ok {
		return models.Token{}, repository.ErrNotFound
	}
	t.Active = active
	r.s.tokens[id] = t
	return t, nil
}

func (r *tokensRepo) SetAnchor(ctx context.Context, id string, lat, lng float64) (models.Token, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[id]
	if !ok {
		return models.Token{}, repository.ErrNotFound
	}
	t.Lat, t.Lng = lat, lng
	r.s.tokens[id] = t
	return t, nil
}

func (r *tokensRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tokens[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.tokens, id)
	return nil
}

// ---- prizes ----

type prizesRepo struct{ s *Store }

func (r *prizesRepo) Create(ctx context.Context, p models.Prize) (models.Prize, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now()
	r.s.prizes[p.ID] = p
	return p, nil
}

func (r *prizesRepo) GetByID(ctx context.Context, id string) (models.Prize, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.prizes[id]
	if !ok {
		return models.Prize{}, repository.ErrNotFound
	}
	return p, nil
}

func (r *prizesRepo) Update(ctx context.Context, p models.Prize) (models.Prize, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.prizes[p.ID]
	if !ok {
		return models.Prize{}, repository.ErrNotFound
	}
	p.CreatedAt = existing.CreatedAt
	r.s.prizes[p.ID] = p
	return p, nil
}

func (r *prizesRepo) Deactivate(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.prizes[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Active = false
	r.s.prizes[id] = p
	return nil
}

func (r *prizesRepo) ListActive(ctx context.Context) ([]models.Prize, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Prize
	for _, p := range r.s.prizes {
		if p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PointsRequired < out[j].PointsRequired })
	return out, nil
}

func (r *prizesRepo) ListAll(ctx context.Context) ([]models.Prize, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Prize, 0, len(r.s.prizes))
	for _, p := range r.s.prizes {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ---- ledger ----

type ledgerRepo struct{ s *Store }

func (r *ledgerRepo) detail(e models.LedgerEntry) models.LedgerEntryDetail {
	d := models.LedgerEntryDetail{LedgerEntry: e}
	if e.TokenID != nil {
		if t, ok := r.s.tokens[*e.TokenID]; ok {
			label := t.Label
			d.TokenLabel = &label
		}
	}
	if e.PrizeID != nil {
		if p, ok := r.s.prizes[*e.PrizeID]; ok {
			name := p.Name
			d.PrizeName = &name
		}
	}
	return d
}

func (r *ledgerRepo) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]models.LedgerEntryDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.LedgerEntryDetail
	for i := len(r.s.entries) - 1; i >= 0; i-- {
		if r.s.entries[i].AccountID == accountID {
			out = append(out, r.detail(r.s.entries[i]))
		}
	}
	return page(out, limit, offset), nil
}

func (r *ledgerRepo) ListRecent(ctx context.Context, limit int) ([]models.LedgerEntryDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.LedgerEntryDetail
	for i := len(r.s.entries) - 1; i >= 0; i-- {
		out = append(out, r.detail(r.s.entries[i]))
	}
	return page(out, limit, 0), nil
}

func page(entries []models.LedgerEntryDetail, limit, offset int) []models.LedgerEntryDetail {
	if offset >= len(entries) {
		return nil
	}
	entries = entries[offset:]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries
}

func (r *ledgerRepo) Stats(ctx context.Context) (models.Stats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var s models.Stats
	for _, a := range r.s.accounts {
		if a.Role == "user" {
			s.TotalUsers++
			s.TotalPointsHeld += a.Balance
		}
	}
	for _, e := range r.s.entries {
		switch e.Kind {
		case models.KindEarn:
			s.TotalPointsEarned += e.Delta
		case models.KindSpend:
			s.TotalPointsSpent += -e.Delta
		}
	}
	for _, t := range r.s.tokens {
		if t.Active {
			s.ActiveTokens++
		}
	}
	for _, p := range r.s.prizes {
		if p.Active {
			s.ActivePrizes++
		}
	}
	return s, nil
}

// ---- audit logs ----

type auditLogsRepo struct{ s *Store }

func (r *auditLogsRepo) Create(ctx context.Context, l models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = time.Now()
	r.s.audits = append(r.s.audits, l)
	return nil
}
