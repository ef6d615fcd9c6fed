package dto

type UpdateBusinessInput struct {
	ID                 string  `json:"-"`
	Name               string  `json:"name" binding:"required"`
	SubscriptionStatus string  `json:"subscription_status" binding:"required"`
	SubscriptionTier   *string `json:"subscription_tier"`
}

type UpdateUserProfileInput struct {
	TargetUserID string  `json:"target_user_id"`
	FullName     *string `json:"full_name"`
	Email        *string `json:"email"`
}
