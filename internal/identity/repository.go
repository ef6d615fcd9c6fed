package identity

import (
	"context"

	"github.com/fekuna/omnipos-backoffice-service/internal/model"
)

type Repository interface {
	CreateAccount(ctx context.Context, account *model.Account, profile *model.Profile) error
	FindAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	FindAccountByID(ctx context.Context, id string) (*model.Account, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	FindProfile(ctx context.Context, userID string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, profile *model.Profile) error
	FindBusiness(ctx context.Context, businessID string) (*model.Business, error)

	ListRoles(ctx context.Context, userID, businessID string) ([]model.Role, error)
	IsPlatformAdmin(ctx context.Context, userID string) (bool, error)
	GrantPlatformAdmin(ctx context.Context, userID string) error
}
