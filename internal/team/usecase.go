package team

import (
	"context"

	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/fekuna/omnipos-backoffice-service/internal/team/dto"
)

type UseCase interface {
	ListMembers(ctx context.Context, businessID string) ([]*model.TeamMember, error)
	Invite(ctx context.Context, input *dto.InviteInput) (*dto.InviteResult, error)
	RemoveMember(ctx context.Context, input *dto.RemoveMemberInput) error
	DeleteUser(ctx context.Context, input *dto.DeleteUserInput) error
}
