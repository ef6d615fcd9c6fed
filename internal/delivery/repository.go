package delivery

import (
	"context"

	"github.com/fekuna/omnipos-backoffice-service/internal/delivery/dto"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
)

type Repository interface {
	FindByToken(ctx context.Context, token string) (*dto.DeliveryDetail, error)
	// Confirm records the proof of delivery and completes the order in one transaction.
	Confirm(ctx context.Context, token, photoURL string, notes *string) (*model.Order, *model.DeliveryConfirmation, error)
}
