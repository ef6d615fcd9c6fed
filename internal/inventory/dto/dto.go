package dto

import (
	"github.com/fekuna/omnipos-backoffice-service/internal/costing"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
)

const (
	StockIn  = "in"
	StockLow = "low"
	StockOut = "out"
)

type InventoryFilters struct {
	BusinessID  string
	IDs         []string // restricts the result to search hits
	Search      string
	Category    string
	StockStatus string // in, low, out
	SortBy      string // name, quantity, created_at
	SortOrder   string // asc, desc
	Page        int
	PageSize    int
}

type MovementFilters struct {
	BusinessID   string
	ItemID       string
	MovementType string
	Page         int
	PageSize     int
}

// ItemView is an inventory item with its derived availability.
type ItemView struct {
	model.InventoryItem
	Reserved  float64 `json:"reserved"`
	Available float64 `json:"available"`
	IsLow     bool    `json:"is_low"`
	IsOut     bool    `json:"is_out"`
}

func NewItemView(item model.InventoryItem, reserved map[string]float64) *ItemView {
	lvl := costing.Level(item, reserved)
	return &ItemView{
		InventoryItem: item,
		Reserved:      lvl.Reserved,
		Available:     lvl.Available,
		IsLow:         lvl.Low(),
		IsOut:         lvl.Out(),
	}
}

// StockStatus classifies the view for the stock_status filter.
func (v *ItemView) StockStatus() string {
	switch {
	case v.IsOut:
		return StockOut
	case v.IsLow:
		return StockLow
	}
	return StockIn
}

type ListResult struct {
	Items    []*ItemView `json:"items"`
	Total    int         `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

type MovementList struct {
	Movements []model.InventoryMovement `json:"movements"`
	Total     int                       `json:"total"`
}
