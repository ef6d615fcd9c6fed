package report

import (
	"context"

	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	orderdto "github.com/fekuna/omnipos-backoffice-service/internal/order/dto"
	"github.com/fekuna/omnipos-backoffice-service/internal/report/dto"
)

type UseCase interface {
	OrdersPDF(ctx context.Context, input *dto.OrdersReportInput) (*dto.Document, error)
}

// OrderSource and BusinessSource are satisfied by the order and business
// repositories.
type OrderSource interface {
	FindAll(ctx context.Context, filters *orderdto.OrderFilters) ([]model.Order, int, error)
}

type BusinessSource interface {
	FindByID(ctx context.Context, id string) (*model.Business, error)
}
