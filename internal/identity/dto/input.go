package dto

type SignUpInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileInput struct {
	UserID         string  `json:"-"`
	FullName       *string `json:"full_name"`
	PhoneNumber    *string `json:"phone_number"`
	TelegramChatID *int64  `json:"telegram_chat_id"`
}

type ChangePasswordInput struct {
	UserID          string `json:"-"`
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}
