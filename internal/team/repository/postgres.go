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

func (r *PGRepository) ListMembers(ctx context.Context, businessID string) ([]*model.TeamMember, error) {
	members := []*model.TeamMember{}
	err := r.DB.SelectContext(ctx, &members, `
        SELECT ur.id AS role_id, ur.user_id, ur.role, p.email, p.full_name, p.phone_number, ur.created_at AS joined_at
        FROM user_roles ur
        JOIN profiles p ON p.id = ur.user_id
        WHERE ur.business_id = $1
        ORDER BY ur.created_at ASC
    `, businessID)
	return members, err
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

func (r *PGRepository) FindProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var p model.Profile
	err := r.DB.GetContext(ctx, &p, `
        SELECT p.* FROM profiles p
        JOIN accounts a ON a.id = p.id
        WHERE a.email = $1
    `, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) ListRoles(ctx context.Context, userID, businessID string) ([]model.Role, error) {
	roles := []model.Role{}
	err := r.DB.SelectContext(ctx, &roles,
		`SELECT role FROM user_roles WHERE user_id = $1 AND business_id = $2`, userID, businessID)
	return roles, err
}

func (r *PGRepository) FindRole(ctx context.Context, roleID, businessID string) (*model.UserRole, error) {
	var role model.UserRole
	err := r.DB.GetContext(ctx, &role,
		`SELECT * FROM user_roles WHERE id = $1 AND business_id = $2`, roleID, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *PGRepository) AddRole(ctx context.Context, role *model.UserRole) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        UPDATE profiles SET business_id = $1, updated_at = NOW()
        WHERE id = $2 AND (business_id IS NULL OR business_id = $1)
    `, role.BusinessID, role.UserID)
	if err != nil {
		return fmt.Errorf("failed to bind profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("profile %s belongs to another business", role.UserID)
	}

	if err := insertRole(ctx, tx, role); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *PGRepository) CreateMember(ctx context.Context, a *model.Account, p *model.Profile, role *model.UserRole) error {
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

	if err := insertRole(ctx, tx, role); err != nil {
		return err
	}
	return tx.Commit()
}

func insertRole(ctx context.Context, tx *sqlx.Tx, role *model.UserRole) error {
	if _, err := tx.NamedExecContext(ctx, `
        INSERT INTO user_roles (id, user_id, business_id, role, created_at)
        VALUES (:id, :user_id, :business_id, :role, :created_at)
    `, role); err != nil {
		return fmt.Errorf("failed to insert role: %w", err)
	}
	return nil
}

func (r *PGRepository) RemoveRole(ctx context.Context, role *model.UserRole) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE id = $1`, role.ID); err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
        UPDATE profiles SET business_id = NULL, updated_at = NOW()
        WHERE id = $1 AND business_id = $2
          AND NOT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND business_id = $2)
    `, role.UserID, role.BusinessID); err != nil {
		return fmt.Errorf("failed to unbind profile: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) DeleteUser(ctx context.Context, userID string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	steps := []struct {
		query string
		what  string
	}{
		{`DELETE FROM user_roles WHERE user_id = $1`, "roles"},
		{`UPDATE orders SET assigned_driver_id = NULL WHERE assigned_driver_id = $1`, "driver assignments"},
		{`UPDATE profiles SET business_id = NULL WHERE id = $1`, "profile business"},
		{`DELETE FROM profiles WHERE id = $1`, "profile"},
		{`DELETE FROM accounts WHERE id = $1`, "account"},
	}
	for _, s := range steps {
		if _, err := tx.ExecContext(ctx, s.query, userID); err != nil {
			return fmt.Errorf("failed to delete %s: %w", s.what, err)
		}
	}

	return tx.Commit()
}
