package usecase

import (
	"context"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/auth"
	"github.com/fekuna/omnipos-backoffice-service/internal/identity"
	"github.com/fekuna/omnipos-backoffice-service/internal/identity/dto"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/pkg/cache"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minPasswordLength = 8

type identityUseCase struct {
	repo     identity.Repository
	tokens   *auth.TokenManager
	throttle *loginThrottle
	logger   logger.ZapLogger
}

func NewIdentityUseCase(repo identity.Repository, tokens *auth.TokenManager, cache *cache.RedisClient, log logger.ZapLogger) identity.UseCase {
	return &identityUseCase{
		repo:     repo,
		tokens:   tokens,
		throttle: &loginThrottle{cache: cache},
		logger:   log,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return apperror.Validation("A valid email address is required")
	}
	return nil
}

func (uc *identityUseCase) SignUp(ctx context.Context, input *dto.SignUpInput) (*model.Profile, error) {
	email := NormalizeEmail(input.Email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperror.Validationf("Password must be at least %d characters", minPasswordLength)
	}

	existing, err := uc.repo.FindAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Conflict("An account with this email already exists")
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now()
	account := &model.Account{ID: id, Email: email, PasswordHash: hash, CreatedAt: now, UpdatedAt: now}
	profile := &model.Profile{
		BaseModel: model.BaseModel{ID: id, CreatedAt: now, UpdatedAt: now},
		Email:     &email,
	}
	if name := strings.TrimSpace(input.FullName); name != "" {
		profile.FullName = &name
	}

	if err := uc.repo.CreateAccount(ctx, account, profile); err != nil {
		return nil, err
	}
	uc.logger.Info("Account created", zap.String("user_id", id))
	return profile, nil
}

func (uc *identityUseCase) Login(ctx context.Context, input *dto.LoginInput) (*dto.TokenResult, error) {
	email := NormalizeEmail(input.Email)

	wait, err := uc.throttle.retryAfter(ctx, email)
	if err != nil {
		uc.logger.Warn("login throttle unavailable", zap.Error(err))
	}
	if wait > 0 {
		return nil, apperror.TooManyRequests(retryMessage(wait))
	}

	account, err := uc.repo.FindAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil || !auth.CheckPassword(account.PasswordHash, input.Password) {
		if err := uc.throttle.recordFailure(ctx, email); err != nil {
			uc.logger.Warn("failed to record login failure", zap.Error(err))
		}
		return nil, apperror.Unauthorized("Invalid email or password")
	}

	if err := uc.throttle.reset(ctx, email); err != nil {
		uc.logger.Warn("failed to reset login throttle", zap.Error(err))
	}

	token, expiresAt, err := uc.tokens.Issue(account.ID, account.Email)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResult{Token: token, ExpiresAt: expiresAt, UserID: account.ID}, nil
}

func (uc *identityUseCase) GetSession(ctx context.Context, userID string) (*dto.Session, error) {
	profile, err := uc.repo.FindProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperror.NotFound("Profile not found")
	}

	session := &dto.Session{Profile: profile, Roles: []model.Role{}}
	if profile.BusinessID != nil {
		if session.Business, err = uc.repo.FindBusiness(ctx, *profile.BusinessID); err != nil {
			return nil, err
		}
		if session.Roles, err = uc.repo.ListRoles(ctx, userID, *profile.BusinessID); err != nil {
			return nil, err
		}
	}
	if session.IsPlatformAdmin, err = uc.repo.IsPlatformAdmin(ctx, userID); err != nil {
		return nil, err
	}

	for _, r := range session.Roles {
		switch r {
		case model.RoleOwner:
			session.IsOwner = true
		case model.RoleAdmin:
			session.IsAdmin = true
		case model.RoleDriver:
			session.IsDriver = true
		}
	}
	return session, nil
}

// ResolveSession returns nil for a user that no longer exists.
func (uc *identityUseCase) ResolveSession(ctx context.Context, userID string) (*auth.UserContext, error) {
	profile, err := uc.repo.FindProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}

	user := &auth.UserContext{UserID: userID, Roles: []model.Role{}}
	if profile.Email != nil {
		user.Email = *profile.Email
	}
	if profile.BusinessID != nil {
		user.BusinessID = *profile.BusinessID
		if user.Roles, err = uc.repo.ListRoles(ctx, userID, user.BusinessID); err != nil {
			return nil, err
		}
	}
	if user.IsPlatformAdmin, err = uc.repo.IsPlatformAdmin(ctx, userID); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *identityUseCase) UpdateProfile(ctx context.Context, input *dto.UpdateProfileInput) (*model.Profile, error) {
	p, err := uc.repo.FindProfile(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NotFound("Profile not found")
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if utf8.RuneCountInString(name) > 100 {
			return nil, apperror.Validation("Full name must be at most 100 characters")
		}
		p.FullName = optional(name)
	}
	if input.PhoneNumber != nil {
		phone := strings.TrimSpace(*input.PhoneNumber)
		if utf8.RuneCountInString(phone) > 30 {
			return nil, apperror.Validation("Phone number must be at most 30 characters")
		}
		p.PhoneNumber = optional(phone)
	}
	if input.TelegramChatID != nil {
		if *input.TelegramChatID == 0 {
			p.TelegramChatID = nil
		} else {
			p.TelegramChatID = input.TelegramChatID
		}
	}
	p.UpdatedAt = time.Now()

	if err := uc.repo.UpdateProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *identityUseCase) ChangePassword(ctx context.Context, input *dto.ChangePasswordInput) error {
	account, err := uc.repo.FindAccountByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if account == nil {
		return apperror.NotFound("Account not found")
	}
	if !auth.CheckPassword(account.PasswordHash, input.CurrentPassword) {
		return apperror.Validation("Current password is incorrect")
	}
	if len(input.NewPassword) < minPasswordLength {
		return apperror.Validationf("Password must be at least %d characters", minPasswordLength)
	}

	hash, err := auth.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	return uc.repo.UpdatePassword(ctx, account.ID, hash)
}

func (uc *identityUseCase) GrantPlatformAdmin(ctx context.Context, email string) error {
	account, err := uc.repo.FindAccountByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return err
	}
	if account == nil {
		return apperror.NotFound("No account with that email")
	}
	if err := uc.repo.GrantPlatformAdmin(ctx, account.ID); err != nil {
		return err
	}
	uc.logger.Info("Granted platform admin", zap.String("user_id", account.ID))
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
