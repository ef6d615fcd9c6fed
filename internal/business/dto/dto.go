package dto

import (
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/shopspring/decimal"
)

type BudgetView struct {
	model.BudgetSettings
	Remaining  decimal.Decimal `json:"remaining"`
	OverBudget bool            `json:"over_budget"`
}

func NewBudgetView(b *model.BudgetSettings) *BudgetView {
	return &BudgetView{BudgetSettings: *b, Remaining: b.Remaining(), OverBudget: b.OverBudget()}
}
