package usecase

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/business"
	"github.com/fekuna/omnipos-backoffice-service/internal/business/dto"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxBusinessName = 100

type businessUseCase struct {
	repo   business.Repository
	logger logger.ZapLogger
}

func NewBusinessUseCase(repo business.Repository, log logger.ZapLogger) business.UseCase {
	return &businessUseCase{repo: repo, logger: log}
}

func (uc *businessUseCase) Onboard(ctx context.Context, input *dto.OnboardInput) (*model.Business, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "USD"
	}
	if !model.IsSupportedCurrency(currency) {
		return nil, apperror.Validationf("Unsupported currency %s", currency)
	}

	current, exists, err := uc.repo.FindProfileBusinessID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.NotFound("Profile not found")
	}
	if current != nil {
		return nil, apperror.Conflict("You already belong to a business")
	}

	now := time.Now()
	b := &model.Business{
		BaseModel:          model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:               name,
		Currency:           currency,
		CurrencySymbol:     model.CurrencySymbol(currency),
		SubscriptionStatus: model.SubscriptionActive,
	}
	owner := &model.UserRole{
		ID:         uuid.New().String(),
		UserID:     input.UserID,
		BusinessID: b.ID,
		Role:       model.RoleOwner,
		CreatedAt:  now,
	}
	budget := &model.BudgetSettings{
		ID:          uuid.New().String(),
		BusinessID:  b.ID,
		TotalBudget: decimal.Zero,
		AmountSpent: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.repo.Onboard(ctx, b, owner, budget); err != nil {
		return nil, err
	}
	uc.logger.Info("Business onboarded", zap.String("business_id", b.ID), zap.String("owner_id", input.UserID))
	return b, nil
}

func (uc *businessUseCase) GetBusiness(ctx context.Context, businessID string) (*model.Business, error) {
	b, err := uc.repo.FindByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperror.NotFound("Business not found")
	}
	return b, nil
}

func (uc *businessUseCase) UpdateSettings(ctx context.Context, input *dto.UpdateSettingsInput) (*model.Business, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if !model.IsSupportedCurrency(currency) {
		return nil, apperror.Validationf("Unsupported currency %s", currency)
	}

	b, err := uc.GetBusiness(ctx, input.BusinessID)
	if err != nil {
		return nil, err
	}
	b.Name = name
	b.Currency = currency
	b.CurrencySymbol = model.CurrencySymbol(currency)
	b.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (uc *businessUseCase) GetBudget(ctx context.Context, businessID string) (*dto.BudgetView, error) {
	b, err := uc.repo.GetBudget(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = &model.BudgetSettings{BusinessID: businessID}
	}
	return dto.NewBudgetView(b), nil
}

func (uc *businessUseCase) UpdateBudget(ctx context.Context, input *dto.UpdateBudgetInput) (*dto.BudgetView, error) {
	if input.TotalBudget.IsNegative() || input.AmountSpent.IsNegative() {
		return nil, apperror.Validation("Budget amounts cannot be negative")
	}

	b, err := uc.repo.GetBudget(ctx, input.BusinessID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if b == nil {
		b = &model.BudgetSettings{ID: uuid.New().String(), BusinessID: input.BusinessID, CreatedAt: now}
	}
	b.TotalBudget = input.TotalBudget.Round(2)
	b.AmountSpent = input.AmountSpent.Round(2)
	b.UpdatedAt = now

	if err := uc.repo.UpsertBudget(ctx, b); err != nil {
		return nil, err
	}
	return dto.NewBudgetView(b), nil
}

func (uc *businessUseCase) Currencies() []model.Currency {
	return model.Currencies
}

func validateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", apperror.Validation("Business name is required")
	}
	if utf8.RuneCountInString(name) > maxBusinessName {
		return "", apperror.Validationf("Business name must be at most %d characters", maxBusinessName)
	}
	return name, nil
}
