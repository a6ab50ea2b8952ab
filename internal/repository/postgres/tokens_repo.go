package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stamprally/backend/internal/models"
	"github.com/stamprally/backend/internal/repository"
)

type tokensRepo struct{ pool *pgxpool.Pool }

const tokenCols = `id, code, label, reward_points, lat, lng, active, created_by, created_at`

func scanToken(row interface{ Scan(...any) error }) (models.Token, error) {
	var t models.Token
	err := row.Scan(&t.ID, &t.Code, &t.Label, &t.RewardPoints, &t.Lat, &t.Lng, &t.Active, &t.CreatedBy, &t.CreatedAt)
	return t, mapErr(err)
}

func (r *tokensRepo) Create(ctx context.Context, t models.Token) (models.Token, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO tokens(id, code, label, reward_points, lat, lng, active, created_by)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8)`,
		t.ID, t.Code, t.Label, t.RewardPoints, t.Lat, t.Lng, t.Active, t.CreatedBy,
	)
	if err != nil {
		return models.Token{}, mapErr(err)
	}
	return r.GetByID(ctx, t.ID)
}

func (r *tokensRepo) GetByID(ctx context.Context, id string) (models.Token, error) {
	return scanToken(r.pool.QueryRow(ctx,
		`SELECT `+tokenCols+` FROM tokens WHERE id=$1`, id))
}

func (r *tokensRepo) GetByCode(ctx context.Context, code string) (models.Token, error) {
	return scanToken(r.pool.QueryRow(ctx,
		`SELECT `+tokenCols+` FROM tokens WHERE code=$1`, code))
}

func (r *tokensRepo) List(ctx context.Context) ([]models.Token, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+tokenCols+` FROM tokens ORDER BY created_at DESC`)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []models.Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, mapErr(rows.Err())
}

func (r *tokensRepo) SetActive(ctx context.Context, id string, active bool) (models.Token, error) {
	return scanToken(r.pool.QueryRow(ctx,
		`UPDATE tokens SET active=$2 WHERE id=$1 RETURNING `+tokenCols, id, active))
}

func (r *tokensRepo) SetAnchor(ctx context.Context, id string, lat, lng float64) (models.Token, error) {
	return scanToken(r.pool.QueryRow(ctx,
		`UPDATE tokens SET lat=$2, lng=$3 WHERE id=$1 RETURNING `+tokenCols, id, lat, lng))
}

func (r *tokensRepo) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM tokens WHERE id=$1`, id)
	if err != nil {
		return mapErr(err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
