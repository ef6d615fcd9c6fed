package category

import (
	"context"

	"github.com/fekuna/omnipos-backoffice-service/internal/category/dto"
)

type UseCase interface {
	ListCategories(ctx context.Context, businessID string) ([]string, error)
	RenameCategory(ctx context.Context, input *dto.RenameCategoryInput) (*dto.RenameResult, error)
}
