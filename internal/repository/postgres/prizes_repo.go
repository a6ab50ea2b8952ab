package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stamprally/backend/internal/models"
	"github.com/stamprally/backend/internal/repository"
)

type prizesRepo struct{ pool *pgxpool.Pool }

const prizeCols = `id, name, description, points_required, stock, image_url, active, created_at`

func scanPrize(row interface{ Scan(...any) error }) (models.Prize, error) {
	var p models.Prize
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PointsRequired, &p.Stock, &p.ImageURL, &p.Active, &p.CreatedAt)
	return p, mapErr(err)
}

func (r *prizesRepo) Create(ctx context.Context, p models.Prize) (models.Prize, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO prizes(id, name, description, points_required, stock, image_url, active)
		 VALUES($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.Name, p.Description, p.PointsRequired, p.Stock, p.ImageURL, p.Active,
	)
	if err != nil {
		return models.Prize{}, mapErr(err)
	}
	return r.GetByID(ctx, p.ID)
}

func (r *prizesRepo) GetByID(ctx context.Context, id string) (models.Prize, error) {
	return scanPrize(r.pool.QueryRow(ctx,
		`SELECT `+prizeCols+` FROM prizes WHERE id=$1`, id))
}

// Update rewrites configuration fields. Stock changes here come only from
// the admin API; redemptions go through Tx.DecrementStock.
func (r *prizesRepo) Update(ctx context.Context, p models.Prize) (models.Prize, error) {
	return scanPrize(r.pool.QueryRow(ctx,
		`UPDATE prizes SET name=$2, description=$3, points_required=$4, stock=$5, image_url=$6, active=$7
		  WHERE id=$1 RETURNING `+prizeCols,
		p.ID, p.Name, p.Description, p.PointsRequired, p.Stock, p.ImageURL, p.Active))
}

func (r *prizesRepo) Deactivate(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `UPDATE prizes SET active=false WHERE id=$1`, id)
	if err != nil {
		return mapErr(err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *prizesRepo) ListActive(ctx context.Context) ([]models.Prize, error) {
	return r.list(ctx, `SELECT `+prizeCols+` FROM prizes WHERE active ORDER BY points_required ASC`)
}

func (r *prizesRepo) ListAll(ctx context.Context) ([]models.Prize, error) {
	return r.list(ctx, `SELECT `+prizeCols+` FROM prizes ORDER BY created_at DESC`)
}

func (r *prizesRepo) list(ctx context.Context, q string) ([]models.Prize, error) {
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var out []models.Prize
	for rows.Next() {
		p, err := scanPrize(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, mapErr(rows.Err())
}
