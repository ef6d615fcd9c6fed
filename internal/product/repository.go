package product

import (
	"context"

	"github.com/fekuna/omnipos-backoffice-service/internal/costing"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/internal/product/dto"
)

type Repository interface {
	// Create inserts the product together with its components.
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, businessID, id string) (*model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	// Update rewrites the product and replaces its components.
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, businessID, id string) error

	FindComponents(ctx context.Context, businessID string, productIDs []string) ([]dto.ComponentDetail, error)
	FindItems(ctx context.Context, businessID string, ids []string) ([]model.InventoryItem, error)
	ComponentUsage(ctx context.Context, businessID string) ([]costing.Reservation, error)
}
