package identity

import (
	"context"

	"github.com/fekuna/omnipos-backoffice-service/internal/auth"
	"github.com/fekuna/omnipos-backoffice-service/internal/identity/dto"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
)

type UseCase interface {
	SignUp(ctx context.Context, input *dto.SignUpInput) (*model.Profile, error)
	Login(ctx context.Context, input *dto.LoginInput) (*dto.TokenResult, error)
	GetSession(ctx context.Context, userID string) (*dto.Session, error)
	ResolveSession(ctx context.Context, userID string) (*auth.UserContext, error)
	UpdateProfile(ctx context.Context, input *dto.UpdateProfileInput) (*model.Profile, error)
	ChangePassword(ctx context.Context, input *dto.ChangePasswordInput) error
	GrantPlatformAdmin(ctx context.Context, email string) error
}
