package dto

import "github.com/fekuna/omnipos-backoffice-service/internal/model"

type InviteInput struct {
	BusinessID string     `json:"-"`
	Email      string     `json:"email" binding:"required"`
	FullName   string     `json:"full_name"`
	Role       model.Role `json:"role" binding:"required"`
}

type RemoveMemberInput struct {
	BusinessID string
	CallerID   string
	RoleID     string
}

type DeleteUserInput struct {
	BusinessID    string `json:"-"`
	CallerID      string `json:"-"`
	CallerIsOwner bool   `json:"-"`
	UserID        string `json:"user_id"`
}
