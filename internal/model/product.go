package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	BusinessID        string             `db:"business_id" json:"business_id"`
	Name              string             `db:"name" json:"name"`
	QuantityAvailable int                `db:"quantity_available" json:"quantity_available"`
	ProfitMargin      decimal.Decimal    `db:"profit_margin" json:"profit_margin"`
	SalePrice         decimal.Decimal    `db:"sale_price" json:"sale_price"`
	Components        []ProductComponent `db:"-" json:"components"`
}

type ProductComponent struct {
	ID              string    `db:"id" json:"id"`
	BusinessID      string    `db:"business_id" json:"business_id"`
	ProductID       string    `db:"product_id" json:"product_id"`
	InventoryItemID string    `db:"inventory_item_id" json:"inventory_item_id"`
	Quantity        float64   `db:"quantity" json:"quantity"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
