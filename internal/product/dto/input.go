package dto

import "github.com/shopspring/decimal"

type ComponentInput struct {
	InventoryItemID string  `json:"inventory_item_id" binding:"required"`
	Quantity        float64 `json:"quantity"`
}

type ProductInput struct {
	BusinessID        string           `json:"-"`
	ProductID         string           `json:"product_id,omitempty"` // set when quoting an edit
	Name              string           `json:"name"`
	QuantityAvailable int              `json:"quantity_available"`
	ProfitMargin      *decimal.Decimal `json:"profit_margin"`
	Components        []ComponentInput `json:"components"`
}

type UpdateProductInput struct {
	ProductInput
	ID string `json:"-"`
}
