package inventory

import (
	"context"

	"github.com/fekuna/omnipos-backoffice-service/internal/costing"
	"github.com/fekuna/omnipos-backoffice-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, item *model.InventoryItem) error
	FindByID(ctx context.Context, businessID, id string) (*model.InventoryItem, error)
	FindAll(ctx context.Context, filters *dto.InventoryFilters) ([]model.InventoryItem, int, error)
	// Update returns the movement recorded when the quantity changed, nil otherwise.
	Update(ctx context.Context, item *model.InventoryItem, actor *string) (*model.InventoryMovement, error)
	UpdateImage(ctx context.Context, businessID, id, url string) error
	Delete(ctx context.Context, businessID, id string) error
	CountComponentUses(ctx context.Context, id string) (int, error)

	// ComponentUsage lists every product component of the business with the product's quantity.
	ComponentUsage(ctx context.Context, businessID string) ([]costing.Reservation, error)

	// AdjustStockWithMovement applies m.QuantityChange to the locked item and records m.
	AdjustStockWithMovement(ctx context.Context, m *model.InventoryMovement) (*model.InventoryItem, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, int, error)
}
