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

func (r *PGRepository) Stats(ctx context.Context) (*model.PlatformStats, error) {
	var s model.PlatformStats
	err := r.DB.GetContext(ctx, &s, `
        SELECT
            (SELECT COUNT(*) FROM businesses) AS businesses,
            (SELECT COUNT(*) FROM businesses WHERE subscription_status = 'active') AS active_businesses,
            (SELECT COUNT(*) FROM profiles) AS users,
            (SELECT COUNT(DISTINCT user_id) FROM user_roles WHERE role = 'owner') AS owners
    `)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

const businessSummaryQuery = `
    SELECT b.*,
        (SELECT COUNT(DISTINCT user_id) FROM user_roles ur WHERE ur.business_id = b.id) AS member_count,
        (SELECT COUNT(*) FROM orders o WHERE o.business_id = b.id) AS order_count,
        (SELECT COUNT(*) FROM products p WHERE p.business_id = b.id) AS product_count
    FROM businesses b
`

func (r *PGRepository) ListBusinesses(ctx context.Context) ([]*model.BusinessSummary, error) {
	list := []*model.BusinessSummary{}
	err := r.DB.SelectContext(ctx, &list, businessSummaryQuery+` ORDER BY b.created_at DESC`)
	return list, err
}

func (r *PGRepository) FindBusiness(ctx context.Context, id string) (*model.BusinessSummary, error) {
	var b model.BusinessSummary
	err := r.DB.GetContext(ctx, &b, businessSummaryQuery+` WHERE b.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
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

func (r *PGRepository) UpdateBusiness(ctx context.Context, b *model.Business) error {
	_, err := r.DB.NamedExecContext(ctx, `
        UPDATE businesses
        SET name = :name,
            subscription_status = :subscription_status,
            subscription_tier = :subscription_tier,
            updated_at = :updated_at
        WHERE id = :id
    `, b)
	return err
}

func (r *PGRepository) ListUsers(ctx context.Context) ([]*model.PlatformUser, error) {
	users := []*model.PlatformUser{}
	err := r.DB.SelectContext(ctx, &users, `
        SELECT p.*, b.name AS business_name,
            COALESCE((
                SELECT string_agg(ur.role, ',' ORDER BY ur.role)
                FROM user_roles ur
                WHERE ur.user_id = p.id AND ur.business_id = p.business_id
            ), '') AS role_list
        FROM profiles p
        LEFT JOIN businesses b ON b.id = p.business_id
        ORDER BY p.created_at DESC
    `)
	return users, err
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

func (r *PGRepository) EmailTaken(ctx context.Context, email, exceptUserID string) (bool, error) {
	var taken bool
	err := r.DB.GetContext(ctx, &taken,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1 AND id <> $2)`, email, exceptUserID)
	return taken, err
}

// UpdateUserProfile writes the profile and, when email is set, the login email too.
func (r *PGRepository) UpdateUserProfile(ctx context.Context, userID string, fullName, email *string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if fullName != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE profiles SET full_name = $1, updated_at = NOW() WHERE id = $2`, *fullName, userID); err != nil {
			return fmt.Errorf("failed to update full name: %w", err)
		}
	}
	if email != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE accounts SET email = $1, updated_at = NOW() WHERE id = $2`, *email, userID); err != nil {
			return fmt.Errorf("failed to update account email: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE profiles SET email = $1, updated_at = NOW() WHERE id = $2`, *email, userID); err != nil {
			return fmt.Errorf("failed to update profile email: %w", err)
		}
	}

	return tx.Commit()
}
