package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) CreateAccount(ctx context.Context, a *model.Account, p *model.Profile) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, `
        INSERT INTO accounts (id, email, password_hash, created_at, updated_at)
        VALUES (:id, :email, :password_hash, :created_at, :updated_at)
    `, a); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	if _, err := tx.NamedExecContext(ctx, `
        INSERT INTO profiles (id, business_id, email, full_name, phone_number, telegram_chat_id, created_at, updated_at)
        VALUES (:id, :business_id, :email, :full_name, :phone_number, :telegram_chat_id, :created_at, :updated_at)
    `, p); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) FindAccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	var a model.Account
	err := r.DB.GetContext(ctx, &a, `SELECT * FROM accounts WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGRepository) FindAccountByID(ctx context.Context, id string) (*model.Account, error) {
	var a model.Account
	err := r.DB.GetContext(ctx, &a, `SELECT * FROM accounts WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGRepository) UpdatePassword(ctx context.Context, userID, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE accounts SET password_hash = $1, updated_at = NOW() WHERE id = $2`, hash, userID)
	return err
}

func (r *PGRepository) FindProfile(ctx context.Context, userID string) (*model.Profile, error) {
	var p model.Profile
	err := r.DB.GetContext(ctx, &p, `SELECT * FROM profiles WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) UpdateProfile(ctx context.Context, p *model.Profile) error {
	_, err := r.DB.NamedExecContext(ctx, `
        UPDATE profiles
        SET full_name = :full_name,
            phone_number = :phone_number,
            telegram_chat_id = :telegram_chat_id,
            updated_at = :updated_at
        WHERE id = :id
    `, p)
	return err
}

func (r *PGRepository) FindBusiness(ctx context.Context, businessID string) (*model.Business, error) {
	var b model.Business
	err := r.DB.GetContext(ctx, &b, `SELECT * FROM businesses WHERE id = $1`, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGRepository) ListRoles(ctx context.Context, userID, businessID string) ([]model.Role, error) {
	roles := []model.Role{}
	err := r.DB.SelectContext(ctx, &roles,
		`SELECT role FROM user_roles WHERE user_id = $1 AND business_id = $2 ORDER BY role`, userID, businessID)
	return roles, err
}

func (r *PGRepository) IsPlatformAdmin(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.DB.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM platform_admins WHERE user_id = $1)`, userID)
	return exists, err
}

func (r *PGRepository) GrantPlatformAdmin(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO platform_admins (id, user_id, created_at) VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO NOTHING
    `, uuid.New().String(), userID, time.Now())
	return err
}
