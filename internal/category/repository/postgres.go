package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) List(ctx context.Context, businessID string) ([]string, error) {
	categories := []string{}
	err := r.DB.SelectContext(ctx, &categories, `
        SELECT DISTINCT category FROM inventory_items
        WHERE business_id = $1 AND category IS NOT NULL AND category <> ''
        ORDER BY category
    `, businessID)
	return categories, err
}

func (r *PGRepository) Rename(ctx context.Context, businessID, from, to string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE inventory_items SET category = $1, updated_at = NOW()
        WHERE business_id = $2 AND category = $3
    `, to, businessID, from)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
