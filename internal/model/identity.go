package model

import "time"

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleDriver Role = "driver"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleDriver:
		return true
	}
	return false
}

// Account holds login credentials. Its ID is shared with the profile.
type Account struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type Profile struct {
	BaseModel
	BusinessID     *string `db:"business_id" json:"business_id"`
	Email          *string `db:"email" json:"email"`
	FullName       *string `db:"full_name" json:"full_name"`
	PhoneNumber    *string `db:"phone_number" json:"phone_number"`
	TelegramChatID *int64  `db:"telegram_chat_id" json:"telegram_chat_id"`
}

type UserRole struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	BusinessID string    `db:"business_id" json:"business_id"`
	Role       Role      `db:"role" json:"role"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type PlatformAdmin struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

// TeamMember is one role held by a user in a business, joined with the profile.
type TeamMember struct {
	RoleID      string    `db:"role_id" json:"role_id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Role        Role      `db:"role" json:"role"`
	Email       *string   `db:"email" json:"email"`
	FullName    *string   `db:"full_name" json:"full_name"`
	PhoneNumber *string   `db:"phone_number" json:"phone_number"`
	JoinedAt    time.Time `db:"joined_at" json:"joined_at"`
}
