package dto

import "github.com/shopspring/decimal"

type OnboardInput struct {
	UserID   string `json:"-"`
	Name     string `json:"name" binding:"required"`
	Currency string `json:"currency"`
}

type UpdateSettingsInput struct {
	BusinessID string `json:"-"`
	Name       string `json:"name" binding:"required"`
	Currency   string `json:"currency" binding:"required"`
}

type UpdateBudgetInput struct {
	BusinessID  string          `json:"-"`
	TotalBudget decimal.Decimal `json:"total_budget"`
	AmountSpent decimal.Decimal `json:"amount_spent"`
}
