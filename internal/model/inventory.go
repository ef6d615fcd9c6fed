package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type InventoryItem struct {
	BaseModel
	BusinessID   string          `db:"business_id" json:"business_id"`
	Name         string          `db:"name" json:"name"`
	Category     *string         `db:"category" json:"category"`
	ImageURL     *string         `db:"image_url" json:"image_url"`
	Quantity     float64         `db:"quantity" json:"quantity"`
	UnitCost     decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	TotalCost    decimal.Decimal `db:"total_cost" json:"total_cost"`
	ReorderLevel float64         `db:"reorder_level" json:"reorder_level"`
}

const (
	MovementAdjustment   = "adjustment"
	MovementOrderCommit  = "order_commit"
	MovementOrderRestore = "order_restore"

	ReferenceOrder  = "order"
	ReferenceManual = "manual"
)

// InventoryMovement is one append-only line of the stock ledger.
type InventoryMovement struct {
	ID              string    `db:"id" json:"id"`
	BusinessID      string    `db:"business_id" json:"business_id"`
	InventoryItemID string    `db:"inventory_item_id" json:"inventory_item_id"`
	MovementType    string    `db:"movement_type" json:"movement_type"`
	QuantityChange  float64   `db:"quantity_change" json:"quantity_change"`
	QuantityBefore  float64   `db:"quantity_before" json:"quantity_before"`
	QuantityAfter   float64   `db:"quantity_after" json:"quantity_after"`
	ReferenceType   *string   `db:"reference_type" json:"reference_type"`
	ReferenceID     *string   `db:"reference_id" json:"reference_id"`
	Notes           string    `db:"notes" json:"notes"`
	CreatedBy       *string   `db:"created_by" json:"created_by"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}
