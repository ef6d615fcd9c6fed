package delivery

import (
	"context"

	"github.com/fekuna/omnipos-backoffice-service/internal/delivery/dto"
)

type UseCase interface {
	GetDelivery(ctx context.Context, token string) (*dto.DeliveryDetail, error)
	ConfirmDelivery(ctx context.Context, input *dto.ConfirmInput) (*dto.DeliveryDetail, error)
}
