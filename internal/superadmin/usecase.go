package superadmin

import (
	"context"

	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/internal/superadmin/dto"
)

type UseCase interface {
	Stats(ctx context.Context) (*model.PlatformStats, error)
	ListBusinesses(ctx context.Context) ([]*model.BusinessSummary, error)
	GetBusiness(ctx context.Context, id string) (*dto.BusinessDetail, error)
	UpdateBusiness(ctx context.Context, input *dto.UpdateBusinessInput) (*model.BusinessSummary, error)
	ListUsers(ctx context.Context) ([]*dto.UserView, error)
	UpdateUserProfile(ctx context.Context, input *dto.UpdateUserProfileInput) error
}
