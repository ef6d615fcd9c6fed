package order

import (
	"context"

	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/internal/order/dto"
)

type Repository interface {
	// Create snapshots the product onto o, commits its stock and inserts o in one transaction.
	Create(ctx context.Context, o *model.Order, actor *string) error
	FindByID(ctx context.Context, businessID, id string) (*model.Order, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)
	Count(ctx context.Context, businessID string) (int, error)

	// Edit locks the order, commits or restores the quantity delta and saves the new details.
	Edit(ctx context.Context, input *dto.UpdateOrderInput) (*model.Order, error)
	// ChangeStatus runs the status machine; previous is the status before the change.
	ChangeStatus(ctx context.Context, input *dto.StatusInput) (o *model.Order, previous model.OrderStatus, dc *model.DeliveryConfirmation, err error)
	AssignDriver(ctx context.Context, businessID, id string, driverID *string) (*model.Order, error)
	IsDriver(ctx context.Context, businessID, userID string) (bool, error)

	FindConfirmation(ctx context.Context, orderID string) (*model.DeliveryConfirmation, error)
	DriverOrders(ctx context.Context, businessID, driverID string) ([]dto.DriverOrder, error)
}
