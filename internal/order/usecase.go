package order

import (
	"context"

	"github.com/fekuna/omnipos-backoffice-service/internal/order/dto"
)

type UseCase interface {
	CreateOrder(ctx context.Context, input *dto.CreateOrderInput) (*dto.OrderDetail, error)
	GetOrder(ctx context.Context, businessID, id string) (*dto.OrderDetail, error)
	ListOrders(ctx context.Context, filters *dto.OrderFilters) (*dto.OrderList, error)
	Kanban(ctx context.Context, businessID string) (*dto.Kanban, error)
	UpdateOrder(ctx context.Context, input *dto.UpdateOrderInput) (*dto.OrderDetail, error)
	ChangeStatus(ctx context.Context, input *dto.StatusInput) (*dto.OrderDetail, error)
	AssignDriver(ctx context.Context, input *dto.AssignDriverInput) (*dto.OrderDetail, error)
	DriverDashboard(ctx context.Context, businessID, driverID string) (*dto.DriverDashboard, error)
}
