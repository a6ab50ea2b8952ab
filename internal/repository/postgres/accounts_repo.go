package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stamprally/backend/internal/models"
)

type accountsRepo struct{ pool *pgxpool.Pool }

const accountCols = `id, username, password_hash, display_name, role, balance, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.DisplayName, &a.Role, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	return a, mapErr(err)
}

func (r *accountsRepo) Create(ctx context.Context, a models.Account) (models.Account, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO accounts(id, username, password_hash, display_name, role) VALUES($1,$2,$3,$4,$5)`,
		a.ID, a.Username, a.PasswordHash, a.DisplayName, a.Role,
	)
	if err != nil {
		return models.Account{}, mapErr(err)
	}
	return r.GetByID(ctx, a.ID)
}

func (r *accountsRepo) GetByID(ctx context.Context, id string) (models.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE id=$1`, id))
}

func (r *accountsRepo) GetByUsername(ctx context.Context, username string) (models.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE username=$1`, username))
}

func (r *accountsRepo) List(ctx context.Context) ([]models.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+accountCols+` FROM accounts ORDER BY balance DESC, created_at ASC`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, mapErr(rows.Err())
}

func (r *accountsRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE accounts SET password_hash=$2, updated_at=now() WHERE id=$1`, id, passwordHash)
	return mapErr(err)
}

func (r *accountsRepo) HasAdmin(ctx context.Context) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE role='admin')`).Scan(&exists)
	return exists, mapErr(err)
}
