package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	identityUC "github.com/fekuna/omnipos-backoffice-service/internal/identity/usecase"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/internal/superadmin"
	"github.com/fekuna/omnipos-backoffice-service/internal/superadmin/dto"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

type superadminUseCase struct {
	repo   superadmin.Repository
	logger logger.ZapLogger
}

func NewSuperadminUseCase(repo superadmin.Repository, log logger.ZapLogger) superadmin.UseCase {
	return &superadminUseCase{repo: repo, logger: log}
}

func (uc *superadminUseCase) Stats(ctx context.Context) (*model.PlatformStats, error) {
	return uc.repo.Stats(ctx)
}

func (uc *superadminUseCase) ListBusinesses(ctx context.Context) ([]*model.BusinessSummary, error) {
	return uc.repo.ListBusinesses(ctx)
}

func (uc *superadminUseCase) GetBusiness(ctx context.Context, id string) (*dto.BusinessDetail, error) {
	b, err := uc.repo.FindBusiness(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperror.NotFound("Business not found")
	}
	members, err := uc.repo.ListMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.BusinessDetail{BusinessSummary: b, Members: members}, nil
}

func (uc *superadminUseCase) UpdateBusiness(ctx context.Context, input *dto.UpdateBusinessInput) (*model.BusinessSummary, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.Validation("Business name is required")
	}
	if !model.ValidSubscriptionStatus(input.SubscriptionStatus) {
		return nil, apperror.Validationf("Invalid subscription status %q", input.SubscriptionStatus)
	}

	b, err := uc.repo.FindBusiness(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperror.NotFound("Business not found")
	}

	b.Name = name
	b.SubscriptionStatus = input.SubscriptionStatus
	b.SubscriptionTier = nil
	if input.SubscriptionTier != nil {
		if tier := strings.TrimSpace(*input.SubscriptionTier); tier != "" {
			b.SubscriptionTier = &tier
		}
	}
	b.UpdatedAt = time.Now()

	if err := uc.repo.UpdateBusiness(ctx, &b.Business); err != nil {
		return nil, err
	}
	uc.logger.Info("Business updated by platform admin",
		zap.String("business_id", b.ID),
		zap.String("subscription_status", b.SubscriptionStatus),
	)
	return b, nil
}

func (uc *superadminUseCase) ListUsers(ctx context.Context) ([]*dto.UserView, error) {
	users, err := uc.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]*dto.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, dto.NewUserView(u))
	}
	return views, nil
}

func (uc *superadminUseCase) UpdateUserProfile(ctx context.Context, input *dto.UpdateUserProfileInput) error {
	target := strings.TrimSpace(input.TargetUserID)
	if target == "" {
		return apperror.Validation("target_user_id required")
	}

	var fullName, email *string
	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		fullName = &name
	}
	if input.Email != nil {
		e := identityUC.NormalizeEmail(*input.Email)
		if err := identityUC.ValidateEmail(e); err != nil {
			return err
		}
		email = &e
	}

	profile, err := uc.repo.FindProfile(ctx, target)
	if err != nil {
		return apperror.Internal("Failed to update profile", err)
	}
	if profile == nil {
		return apperror.NotFound("User not found")
	}

	if email != nil {
		taken, err := uc.repo.EmailTaken(ctx, *email, target)
		if err != nil {
			return apperror.Internal("Failed to update profile", err)
		}
		if taken {
			return apperror.Conflict("Email already in use")
		}
	}

	if err := uc.repo.UpdateUserProfile(ctx, target, fullName, email); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperror.Conflict("Email already in use")
		}
		return apperror.Internal("Failed to update profile", err)
	}
	uc.logger.Info("Profile updated by platform admin", zap.String("user_id", target))
	return nil
}
