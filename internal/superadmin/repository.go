package superadmin

import (
	"context"

	"github.com/fekuna/omnipos-backoffice-service/internal/model"
)

type Repository interface {
	Stats(ctx context.Context) (*model.PlatformStats, error)
	ListBusinesses(ctx context.Context) ([]*model.BusinessSummary, error)
	FindBusiness(ctx context.Context, id string) (*model.BusinessSummary, error)
	ListMembers(ctx context.Context, businessID string) ([]*model.TeamMember, error)
	UpdateBusiness(ctx context.Context, b *model.Business) error

	ListUsers(ctx context.Context) ([]*model.PlatformUser, error)
	FindProfile(ctx context.Context, userID string) (*model.Profile, error)
	EmailTaken(ctx context.Context, email, exceptUserID string) (bool, error)
	UpdateUserProfile(ctx context.Context, userID string, fullName, email *string) error
}
