package repository

import (
	"context"
	"errors"
	"time"

	"github.com/stamprally/backend/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")

	// ErrConflict marks a commit that lost a race (serialization failure,
	// deadlock, or a conditional update that matched no row). Callers must
	// re-run the whole operation from a fresh read, not resume mid-way.
	ErrConflict = errors.New("commit conflict")
)

type Accounts interface {
	Create(ctx context.Context, a models.Account) (models.Account, error)
	GetByID(ctx context.Context, id string) (models.Account, error)
	GetByUsername(ctx context.Context, username string) (models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	HasAdmin(ctx context.Context) (bool, error)
}

type Tokens interface {
	Create(ctx context.Context, t models.Token) (models.Token, error)
	GetByID(ctx context.Context, id string) (models.Token, error)
	GetByCode(ctx context.Context, code string) (models.Token, error)
	List(ctx context.Context) ([]models.Token, error)
	SetActive(ctx context.Context, id string, active bool) (models.Token, error)
	SetAnchor(ctx context.Context, id string, lat, lng float64) (models.Token, error)
	Delete(ctx context.Context, id string) error
}

type Prizes interface {
	Create(ctx context.Context, p models.Prize) (models.Prize, error)
	GetByID(ctx context.Context, id string) (models.Prize, error)
	Update(ctx context.Context, p models.Prize) (models.Prize, error)
	Deactivate(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]models.Prize, error)
	ListAll(ctx context.Context) ([]models.Prize, error)
}

type Ledger interface {
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]models.LedgerEntryDetail, error)
	ListRecent(ctx context.Context, limit int) ([]models.LedgerEntryDetail, error)
	Stats(ctx context.Context) (models.Stats, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}

// Tx is the commit surface of a scan or redemption. Every method runs
// inside the single transaction opened by TxRunner.WithTx; ForUpdate
// reads lock their row until the transaction ends.
type Tx interface {
	AccountForUpdate(ctx context.Context, id string) (models.Account, error)
	PrizeForUpdate(ctx context.Context, id string) (models.Prize, error)
	// LastScanAt returns the newest scan of token by account after since.
	LastScanAt(ctx context.Context, accountID, tokenID string, since time.Time) (time.Time, bool, error)
	// AddBalance applies a signed delta and returns the new balance.
	// A delta that would drive the balance negative fails with ErrConflict.
	AddBalance(ctx context.Context, accountID string, delta int64) (int64, error)
	// DecrementStock takes one unit; fails with ErrConflict at zero stock.
	DecrementStock(ctx context.Context, prizeID string) error
	AppendEntry(ctx context.Context, e models.LedgerEntry) error
	RecordScan(ctx context.Context, accountID, tokenID string, at time.Time) error
}

type TxRunner interface {
	WithTx(ctx context.Context, fn func(Tx) error) error
}

// Repositories bundles one storage backend's implementations.
type Repositories struct {
	Accounts  Accounts
	Tokens    Tokens
	Prizes    Prizes
	Ledger    Ledger
	AuditLogs AuditLogs
	Tx        TxRunner
}
