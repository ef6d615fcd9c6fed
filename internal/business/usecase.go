package business

import (
	"context"

	"github.com/fekuna/omnipos-backoffice-service/internal/business/dto"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
)

type UseCase interface {
	Onboard(ctx context.Context, input *dto.OnboardInput) (*model.Business, error)
	GetBusiness(ctx context.Context, businessID string) (*model.Business, error)
	UpdateSettings(ctx context.Context, input *dto.UpdateSettingsInput) (*model.Business, error)
	GetBudget(ctx context.Context, businessID string) (*dto.BudgetView, error)
	UpdateBudget(ctx context.Context, input *dto.UpdateBudgetInput) (*dto.BudgetView, error)
	Currencies() []model.Currency
}
