package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/auth"
	identityUC "github.com/fekuna/omnipos-backoffice-service/internal/identity/usecase"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/internal/team"
	"github.com/fekuna/omnipos-backoffice-service/internal/team/dto"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type teamUseCase struct {
	repo   team.Repository
	logger logger.ZapLogger
}

func NewTeamUseCase(repo team.Repository, log logger.ZapLogger) team.UseCase {
	return &teamUseCase{repo: repo, logger: log}
}

func (uc *teamUseCase) ListMembers(ctx context.Context, businessID string) ([]*model.TeamMember, error) {
	return uc.repo.ListMembers(ctx, businessID)
}

func (uc *teamUseCase) Invite(ctx context.Context, input *dto.InviteInput) (*dto.InviteResult, error) {
	if input.Role != model.RoleAdmin && input.Role != model.RoleDriver {
		return nil, apperror.Validation("Role must be admin or driver")
	}
	email := identityUC.NormalizeEmail(input.Email)
	if err := identityUC.ValidateEmail(email); err != nil {
		return nil, err
	}

	now := time.Now()
	role := &model.UserRole{
		ID:         uuid.New().String(),
		BusinessID: input.BusinessID,
		Role:       input.Role,
		CreatedAt:  now,
	}

	profile, err := uc.repo.FindProfileByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if profile != nil {
		if profile.BusinessID != nil && *profile.BusinessID != input.BusinessID {
			return nil, apperror.Conflict("This user already belongs to another business")
		}
		roles, err := uc.repo.ListRoles(ctx, profile.ID, input.BusinessID)
		if err != nil {
			return nil, err
		}
		for _, r := range roles {
			if r == input.Role {
				return nil, apperror.Conflictf("This user is already a %s", input.Role)
			}
		}

		role.UserID = profile.ID
		if err := uc.repo.AddRole(ctx, role); err != nil {
			return nil, err
		}
		uc.logger.Info("Role granted to existing user",
			zap.String("business_id", input.BusinessID),
			zap.String("user_id", profile.ID),
			zap.String("role", string(input.Role)),
		)
		return &dto.InviteResult{UserID: profile.ID, Email: email, Role: input.Role}, nil
	}

	password, err := auth.GenerateTemporaryPassword()
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	businessID := input.BusinessID
	account := &model.Account{ID: id, Email: email, PasswordHash: hash, CreatedAt: now, UpdatedAt: now}
	newProfile := &model.Profile{
		BaseModel:  model.BaseModel{ID: id, CreatedAt: now, UpdatedAt: now},
		BusinessID: &businessID,
		Email:      &email,
	}
	if name := strings.TrimSpace(input.FullName); name != "" {
		newProfile.FullName = &name
	}
	role.UserID = id

	if err := uc.repo.CreateMember(ctx, account, newProfile, role); err != nil {
		return nil, err
	}
	uc.logger.Info("Team member invited",
		zap.String("business_id", input.BusinessID),
		zap.String("user_id", id),
		zap.String("role", string(input.Role)),
	)

	return &dto.InviteResult{
		UserID:            id,
		Email:             email,
		Role:              input.Role,
		NewAccount:        true,
		TemporaryPassword: password,
	}, nil
}

func (uc *teamUseCase) RemoveMember(ctx context.Context, input *dto.RemoveMemberInput) error {
	role, err := uc.repo.FindRole(ctx, input.RoleID, input.BusinessID)
	if err != nil {
		return err
	}
	if role == nil {
		return apperror.NotFound("Team member not found")
	}
	if role.Role == model.RoleOwner {
		return apperror.Forbidden("Cannot remove the business owner")
	}
	if role.UserID == input.CallerID {
		return apperror.Forbidden("You cannot remove yourself")
	}
	return uc.repo.RemoveRole(ctx, role)
}

func (uc *teamUseCase) DeleteUser(ctx context.Context, input *dto.DeleteUserInput) error {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return apperror.Validation("user_id is required")
	}
	if !input.CallerIsOwner {
		return apperror.Forbidden("Only business owners can delete users")
	}

	profile, err := uc.repo.FindProfile(ctx, userID)
	if err != nil {
		return apperror.Internal("Failed to delete user", err)
	}
	if profile == nil || profile.BusinessID == nil || *profile.BusinessID != input.BusinessID {
		return apperror.NotFound("User not found in your business")
	}

	roles, err := uc.repo.ListRoles(ctx, userID, input.BusinessID)
	if err != nil {
		return apperror.Internal("Failed to delete user", err)
	}
	for _, r := range roles {
		if r == model.RoleOwner {
			return apperror.Forbidden("Cannot delete business owners")
		}
	}

	if err := uc.repo.DeleteUser(ctx, userID); err != nil {
		return apperror.Internal("Failed to delete user", err)
	}
	uc.logger.Info("User deleted",
		zap.String("business_id", input.BusinessID),
		zap.String("user_id", userID),
		zap.String("deleted_by", input.CallerID),
	)
	return nil
}
