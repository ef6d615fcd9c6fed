package dto

import (
	"github.com/fekuna/omnipos-backoffice-service/internal/costing"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/shopspring/decimal"
)

type ProductFilters struct {
	BusinessID string   `json:"business_id"`
	IDs        []string `json:"ids,omitempty"`
	Search     string   `json:"search"`
	SortBy     string   `json:"sort_by"`    // name, sale_price, quantity_available, created_at
	SortOrder  string   `json:"sort_order"` // asc, desc
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
}

// ComponentDetail is a product component joined with its inventory item.
type ComponentDetail struct {
	model.ProductComponent
	ItemName string          `db:"item_name" json:"item_name"`
	UnitCost decimal.Decimal `db:"unit_cost" json:"unit_cost"`
}

type ProductView struct {
	model.Product
	Components []ComponentDetail `json:"components"`
	TotalCost  decimal.Decimal   `json:"total_cost"`
	Warnings   []string          `json:"warnings,omitempty"`
}

// Quote previews the pricing and stock check of a product before it is saved.
type Quote struct {
	TotalCost    decimal.Decimal       `json:"total_cost"`
	SalePrice    decimal.Decimal       `json:"sale_price"`
	Requirements []costing.Requirement `json:"requirements"`
	Warnings     []string              `json:"warnings"`
	Errors       []string              `json:"errors"`
}

type ListResult struct {
	Products []*ProductView `json:"products"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}
