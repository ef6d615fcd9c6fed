package inventory

import (
	"context"

	"github.com/fekuna/omnipos-backoffice-service/internal/costing"
	"github.com/fekuna/omnipos-backoffice-service/internal/inventory/dto"
)

type UseCase interface {
	CreateItem(ctx context.Context, input *dto.ItemInput) (*dto.ItemView, error)
	GetItem(ctx context.Context, businessID, id string) (*dto.ItemView, error)
	UpdateItem(ctx context.Context, input *dto.UpdateItemInput) (*dto.ItemView, error)
	DeleteItem(ctx context.Context, businessID, id string) error
	ListItems(ctx context.Context, filters *dto.InventoryFilters) (*dto.ListResult, error)
	ListLowStock(ctx context.Context, businessID string) ([]costing.StockLevel, error)
	AdjustStock(ctx context.Context, input *dto.AdjustInput) (*dto.ItemView, error)
	UploadImage(ctx context.Context, input *dto.ImageInput) (*dto.ItemView, error)
	ListMovements(ctx context.Context, filters *dto.MovementFilters) (*dto.MovementList, error)
}
