package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// Onboard creates the business, binds the owner's profile, grants the owner
// role and opens an empty budget in one transaction.
func (r *PGRepository) Onboard(ctx context.Context, b *model.Business, owner *model.UserRole, budget *model.BudgetSettings) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, `
        INSERT INTO businesses (id, name, currency, currency_symbol, subscription_status, subscription_tier, created_at, updated_at)
        VALUES (:id, :name, :currency, :currency_symbol, :subscription_status, :subscription_tier, :created_at, :updated_at)
    `, b); err != nil {
		return fmt.Errorf("failed to create business: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE profiles SET business_id = $1, updated_at = NOW() WHERE id = $2 AND business_id IS NULL`,
		b.ID, owner.UserID)
	if err != nil {
		return fmt.Errorf("failed to bind profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("profile %s already belongs to a business", owner.UserID)
	}

	if _, err := tx.NamedExecContext(ctx, `
        INSERT INTO user_roles (id, user_id, business_id, role, created_at)
        VALUES (:id, :user_id, :business_id, :role, :created_at)
    `, owner); err != nil {
		return fmt.Errorf("failed to create owner role: %w", err)
	}

	if _, err := tx.NamedExecContext(ctx, `
        INSERT INTO budget_settings (id, business_id, total_budget, amount_spent, created_at, updated_at)
        VALUES (:id, :business_id, :total_budget, :amount_spent, :created_at, :updated_at)
    `, budget); err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Business, error) {
	var b model.Business
	err := r.DB.GetContext(ctx, &b, `SELECT * FROM businesses WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGRepository) Update(ctx context.Context, b *model.Business) error {
	_, err := r.DB.NamedExecContext(ctx, `
        UPDATE businesses
        SET name = :name, currency = :currency, currency_symbol = :currency_symbol, updated_at = :updated_at
        WHERE id = :id
    `, b)
	return err
}

// FindProfileBusinessID reports the profile's business (nil when not onboarded) and whether the profile exists.
func (r *PGRepository) FindProfileBusinessID(ctx context.Context, userID string) (*string, bool, error) {
	var businessID *string
	err := r.DB.GetContext(ctx, &businessID, `SELECT business_id FROM profiles WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return businessID, true, nil
}

func (r *PGRepository) GetBudget(ctx context.Context, businessID string) (*model.BudgetSettings, error) {
	var b model.BudgetSettings
	err := r.DB.GetContext(ctx, &b, `SELECT * FROM budget_settings WHERE business_id = $1`, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGRepository) UpsertBudget(ctx context.Context, b *model.BudgetSettings) error {
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO budget_settings (id, business_id, total_budget, amount_spent, created_at, updated_at)
        VALUES (:id, :business_id, :total_budget, :amount_spent, :created_at, :updated_at)
        ON CONFLICT (business_id) DO UPDATE SET
            total_budget = EXCLUDED.total_budget,
            amount_spent = EXCLUDED.amount_spent,
            updated_at = EXCLUDED.updated_at
    `, b)
	return err
}
