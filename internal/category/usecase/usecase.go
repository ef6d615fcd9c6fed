package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/fekuna/omnipos-backoffice-service/internal/apperror"
	"github.com/fekuna/omnipos-backoffice-service/internal/category"
	"github.com/fekuna/omnipos-backoffice-service/internal/category/dto"
	"github.com/fekuna/omnipos-backoffice-service/internal/dashboard"
	"github.com/fekuna/omnipos-backoffice-service/pkg/cache"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"go.uber.org/zap"
)

const maxCategoryLength = 100

type categoryUseCase struct {
	repo   category.Repository
	cache  *cache.RedisClient
	logger logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, cache *cache.RedisClient, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, businessID string) ([]string, error) {
	return uc.repo.List(ctx, businessID)
}

func (uc *categoryUseCase) RenameCategory(ctx context.Context, input *dto.RenameCategoryInput) (*dto.RenameResult, error) {
	from := strings.TrimSpace(input.From)
	to := strings.TrimSpace(input.To)
	if from == "" || to == "" {
		return nil, apperror.Validation("Both the current and the new category name are required")
	}
	if utf8.RuneCountInString(to) > maxCategoryLength {
		return nil, apperror.Validationf("Category must be at most %d characters", maxCategoryLength)
	}

	res := &dto.RenameResult{From: from, To: to}
	if from == to {
		return res, nil
	}

	n, err := uc.repo.Rename(ctx, input.BusinessID, from, to)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperror.NotFound("Category not found")
	}
	res.Updated = n

	uc.logger.Info("Category renamed",
		zap.String("business_id", input.BusinessID),
		zap.String("from", from),
		zap.String("to", to),
		zap.Int64("items", n),
	)

	dashboard.InvalidateAsync(uc.cache, uc.logger, input.BusinessID)
	return res, nil
}
