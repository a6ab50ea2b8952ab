package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stamprally/backend/internal/models"
	"github.com/stamprally/backend/internal/repository"
)

type txRunner struct{ pool *pgxpool.Pool }

// WithTx runs fn inside one database transaction. Row locks taken by the
// ForUpdate reads serialize commits touching the same account or prize;
// commits on disjoint rows proceed in parallel.
func (r *txRunner) WithTx(ctx context.Context, fn func(repository.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadWrite})
	if err != nil {
		return mapErr(err)
	}
	if err := fn(&pgTx{tx}); err != nil {
		_ = tx.Rollback(ctx)
		return mapErr(err)
	}
	return mapErr(tx.Commit(ctx))
}

type pgTx struct{ tx pgx.Tx }

func (t *pgTx) AccountForUpdate(ctx context.Context, id string) (models.Account, error) {
	return scanAccount(t.tx.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE id=$1 FOR UPDATE`, id))
}

func (t *pgTx) PrizeForUpdate(ctx context.Context, id string) (models.Prize, error) {
	return scanPrize(t.tx.QueryRow(ctx,
		`SELECT `+prizeCols+` FROM prizes WHERE id=$1 FOR UPDATE`, id))
}

func (t *pgTx) LastScanAt(ctx context.Context, accountID, tokenID string, since time.Time) (time.Time, bool, error) {
	var at time.Time
	err := t.tx.QueryRow(ctx,
		`SELECT scanned_at FROM scan_records
		  WHERE account_id=$1 AND token_id=$2 AND scanned_at > $3
		  ORDER BY scanned_at DESC LIMIT 1`,
		accountID, tokenID, since).Scan(&at)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, mapErr(err)
	}
	return at, true, nil
}

func (t *pgTx) AddBalance(ctx context.Context, accountID string, delta int64) (int64, error) {
	var balance int64
	err := t.tx.QueryRow(ctx,
		`UPDATE accounts SET balance = balance + $2, updated_at = now()
		  WHERE id = $1 AND balance + $2 >= 0
		  RETURNING balance`,
		accountID, delta).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		// Guard was re-checked under lock, so this only fires if the row
		// vanished or the caller skipped the guard; force a fresh run.
		return 0, repository.ErrConflict
	}
	return balance, mapErr(err)
}

func (t *pgTx) DecrementStock(ctx context.Context, prizeID string) error {
	ct, err := t.tx.Exec(ctx,
		`UPDATE prizes SET stock = stock - 1 WHERE id = $1 AND stock > 0`, prizeID)
	if err != nil {
		return mapErr(err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrConflict
	}
	return nil
}

func (t *pgTx) AppendEntry(ctx context.Context, e models.LedgerEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := t.tx.Exec(ctx,
		`INSERT INTO ledger_entries(id, account_id, delta, kind, token_id, prize_id, description, created_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8)`,
		e.ID, e.AccountID, e.Delta, e.Kind, e.TokenID, e.PrizeID, e.Description, e.CreatedAt)
	return mapErr(err)
}

func (t *pgTx) RecordScan(ctx context.Context, accountID, tokenID string, at time.Time) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO scan_records(id, account_id, token_id, scanned_at) VALUES($1,$2,$3,$4)`,
		uuid.NewString(), accountID, tokenID, at)
	return mapErr(err)
}
