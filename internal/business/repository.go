package business

import (
	"context"

	"github.com/fekuna/omnipos-backoffice-service/internal/model"
)

type Repository interface {
	Onboard(ctx context.Context, b *model.Business, owner *model.UserRole, budget *model.BudgetSettings) error
	FindByID(ctx context.Context, id string) (*model.Business, error)
	Update(ctx context.Context, b *model.Business) error
	FindProfileBusinessID(ctx context.Context, userID string) (*string, bool, error)

	GetBudget(ctx context.Context, businessID string) (*model.BudgetSettings, error)
	UpsertBudget(ctx context.Context, budget *model.BudgetSettings) error
}
