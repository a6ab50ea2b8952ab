package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stamprally/backend/internal/models"
)

type ledgerRepo struct{ pool *pgxpool.Pool }

const entryDetailQuery = `
SELECT le.id, le.account_id, le.delta, le.kind, le.token_id, le.prize_id, le.description, le.created_at,
       t.label, p.name
  FROM ledger_entries le
  LEFT JOIN tokens t ON le.token_id = t.id
  LEFT JOIN prizes p ON le.prize_id = p.id`

func collectEntries(rows pgx.Rows) ([]models.LedgerEntryDetail, error) {
	defer rows.Close()
	var out []models.LedgerEntryDetail
	for rows.Next() {
		var e models.LedgerEntryDetail
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Delta, &e.Kind, &e.TokenID, &e.PrizeID,
			&e.Description, &e.CreatedAt, &e.TokenLabel, &e.PrizeName); err != nil {
			return nil, mapErr(err)
		}
		out = append(out, e)
	}
	return out, mapErr(rows.Err())
}

func (r *ledgerRepo) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]models.LedgerEntryDetail, error) {
	rows, err := r.pool.Query(ctx,
		entryDetailQuery+` WHERE le.account_id=$1 ORDER BY le.created_at DESC LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectEntries(rows)
}

func (r *ledgerRepo) ListRecent(ctx context.Context, limit int) ([]models.LedgerEntryDetail, error) {
	rows, err := r.pool.Query(ctx,
		entryDetailQuery+` ORDER BY le.created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	return collectEntries(rows)
}

func (r *ledgerRepo) Stats(ctx context.Context) (models.Stats, error) {
	var s models.Stats
	err := r.pool.QueryRow(ctx, `
SELECT (SELECT COUNT(*) FROM accounts WHERE role='user'),
       (SELECT COALESCE(SUM(balance),0) FROM accounts WHERE role='user'),
       (SELECT COALESCE(SUM(delta),0) FROM ledger_entries WHERE kind='earn'),
       (SELECT COALESCE(ABS(SUM(delta)),0) FROM ledger_entries WHERE kind='spend'),
       (SELECT COUNT(*) FROM tokens WHERE active),
       (SELECT COUNT(*) FROM prizes WHERE active)`,
	).Scan(&s.TotalUsers, &s.TotalPointsHeld, &s.TotalPointsEarned, &s.TotalPointsSpent,
		&s.ActiveTokens, &s.ActivePrizes)
	return s, mapErr(err)
}
