package dashboard

import (
	"context"

	"github.com/fekuna/omnipos-backoffice-service/internal/dashboard/dto"
)

type UseCase interface {
	GetSummary(ctx context.Context, businessID string) (*dto.Summary, error)
	GetChecklist(ctx context.Context, businessID string, isOwner bool) (*dto.Checklist, error)
}
