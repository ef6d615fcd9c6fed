package team

import (
	"context"

	"github.com/fekuna/omnipos-backoffice-service/internal/model"
)

type Repository interface {
	ListMembers(ctx context.Context, businessID string) ([]*model.TeamMember, error)
	FindProfile(ctx context.Context, userID string) (*model.Profile, error)
	FindProfileByEmail(ctx context.Context, email string) (*model.Profile, error)
	ListRoles(ctx context.Context, userID, businessID string) ([]model.Role, error)
	FindRole(ctx context.Context, roleID, businessID string) (*model.UserRole, error)

	// AddRole binds an existing profile to the business when unbound and inserts the role.
	AddRole(ctx context.Context, role *model.UserRole) error
	// CreateMember creates account, profile and role together.
	CreateMember(ctx context.Context, account *model.Account, profile *model.Profile, role *model.UserRole) error
	// RemoveRole deletes the role and unbinds the profile once no role in the business remains.
	RemoveRole(ctx context.Context, role *model.UserRole) error
	DeleteUser(ctx context.Context, userID string) error
}
