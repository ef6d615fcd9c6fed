package dashboard

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/costing"
	"github.com/fekuna/omnipos-backoffice-service/internal/dashboard/dto"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
)

type Repository interface {
	// Totals counts revenue of Completed orders updated at or after monthStart.
	Totals(ctx context.Context, businessID string, monthStart time.Time) (*dto.Totals, error)
	InventoryItems(ctx context.Context, businessID string) ([]model.InventoryItem, error)
	ComponentUsage(ctx context.Context, businessID string) ([]costing.Reservation, error)
	RecentOrders(ctx context.Context, businessID string, limit int) ([]model.Order, error)
}
