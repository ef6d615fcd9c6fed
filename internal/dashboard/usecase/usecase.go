package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/costing"
	"github.com/fekuna/omnipos-backoffice-service/internal/dashboard"
	"github.com/fekuna/omnipos-backoffice-service/internal/dashboard/dto"
	"github.com/fekuna/omnipos-backoffice-service/pkg/cache"
	"github.com/fekuna/omnipos-backoffice-service/pkg/logger"
	"go.uber.org/zap"
)

const recentOrders = 5

type dashboardUseCase struct {
	repo   dashboard.Repository
	cache  *cache.RedisClient
	logger logger.ZapLogger
	now    func() time.Time
}

func NewDashboardUseCase(repo dashboard.Repository, cache *cache.RedisClient, log logger.ZapLogger) dashboard.UseCase {
	return &dashboardUseCase{
		repo:   repo,
		cache:  cache,
		logger: log,
		now:    time.Now,
	}
}

func (uc *dashboardUseCase) GetSummary(ctx context.Context, businessID string) (*dto.Summary, error) {
	key := dashboard.CacheKey(businessID)
	if uc.cache != nil {
		var cached dto.Summary
		hit, err := uc.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			uc.logger.Warn("dashboard cache read failed", zap.String("business_id", businessID), zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	now := uc.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	totals, err := uc.repo.Totals(ctx, businessID, monthStart)
	if err != nil {
		return nil, err
	}
	items, err := uc.repo.InventoryItems(ctx, businessID)
	if err != nil {
		return nil, err
	}
	usage, err := uc.repo.ComponentUsage(ctx, businessID)
	if err != nil {
		return nil, err
	}
	orders, err := uc.repo.RecentOrders(ctx, businessID, recentOrders)
	if err != nil {
		return nil, err
	}

	summary := &dto.Summary{
		Totals:       *totals,
		LowStock:     costing.LowStock(items, costing.Reserved(usage)),
		RecentOrders: orders,
		GeneratedAt:  now,
	}

	if uc.cache != nil {
		if err := uc.cache.SetJSON(ctx, key, summary, dashboard.CacheTTL); err != nil {
			uc.logger.Warn("dashboard cache write failed", zap.String("business_id", businessID), zap.Error(err))
		}
	}
	return summary, nil
}

func (uc *dashboardUseCase) GetChecklist(ctx context.Context, businessID string, isOwner bool) (*dto.Checklist, error) {
	now := uc.now().UTC()
	t, err := uc.repo.Totals(ctx, businessID, time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return nil, err
	}

	steps := []dto.Step{
		{Key: "inventory", Title: "Add your first inventory item", Done: t.InventoryItems > 0},
		{Key: "product", Title: "Create your first product", Done: t.Products > 0},
		{Key: "order", Title: "Record your first order", Done: t.TotalOrders > 0},
	}
	if isOwner {
		steps = append(steps, dto.Step{Key: "team", Title: "Invite a team member", Done: t.TeamMembers > 0})
	}

	cl := &dto.Checklist{Steps: steps, Total: len(steps)}
	for _, s := range steps {
		if s.Done {
			cl.Completed++
		}
	}
	cl.Progress = cl.Completed * 100 / cl.Total
	return cl, nil
}
