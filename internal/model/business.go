package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SubscriptionActive    = "active"
	SubscriptionSuspended = "suspended"
	SubscriptionCancelled = "cancelled"
)

func ValidSubscriptionStatus(s string) bool {
	switch s {
	case SubscriptionActive, SubscriptionSuspended, SubscriptionCancelled:
		return true
	}
	return false
}

type Business struct {
	BaseModel
	Name               string  `db:"name" json:"name"`
	Currency           string  `db:"currency" json:"currency"`
	CurrencySymbol     string  `db:"currency_symbol" json:"currency_symbol"`
	SubscriptionStatus string  `db:"subscription_status" json:"subscription_status"`
	SubscriptionTier   *string `db:"subscription_tier" json:"subscription_tier"`
}

type BudgetSettings struct {
	ID          string          `db:"id" json:"id"`
	BusinessID  string          `db:"business_id" json:"business_id"`
	TotalBudget decimal.Decimal `db:"total_budget" json:"total_budget"`
	AmountSpent decimal.Decimal `db:"amount_spent" json:"amount_spent"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

func (b BudgetSettings) Remaining() decimal.Decimal {
	return b.TotalBudget.Sub(b.AmountSpent)
}

func (b BudgetSettings) OverBudget() bool {
	return b.AmountSpent.GreaterThan(b.TotalBudget)
}
