package product

import (
	"context"

	"github.com/fekuna/omnipos-backoffice-service/internal/product/dto"
)

type UseCase interface {
	QuoteProduct(ctx context.Context, input *dto.ProductInput) (*dto.Quote, error)
	CreateProduct(ctx context.Context, input *dto.ProductInput) (*dto.ProductView, error)
	GetProduct(ctx context.Context, businessID, id string) (*dto.ProductView, error)
	ListProducts(ctx context.Context, filters *dto.ProductFilters) (*dto.ListResult, error)
	UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*dto.ProductView, error)
	DeleteProduct(ctx context.Context, businessID, id string) error
}
