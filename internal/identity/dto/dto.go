package dto

import (
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/model"
)

type TokenResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
}

type Session struct {
	Profile         *model.Profile  `json:"profile"`
	Business        *model.Business `json:"business"`
	Roles           []model.Role    `json:"roles"`
	IsOwner         bool            `json:"is_owner"`
	IsAdmin         bool            `json:"is_admin"`
	IsDriver        bool            `json:"is_driver"`
	IsPlatformAdmin bool            `json:"is_platform_admin"`
}
