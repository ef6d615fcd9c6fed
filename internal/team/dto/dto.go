package dto

import "github.com/fekuna/omnipos-backoffice-service/internal/model"

// InviteResult carries the temporary password only when a new account was created.
type InviteResult struct {
	UserID            string     `json:"user_id"`
	Email             string     `json:"email"`
	Role              model.Role `json:"role"`
	NewAccount        bool       `json:"new_account"`
	TemporaryPassword string     `json:"temporary_password,omitempty"`
}
