package dto

import (
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/costing"
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/shopspring/decimal"
)

// Totals are the aggregate counters of one business.
type Totals struct {
	InventoryValue decimal.Decimal `db:"inventory_value" json:"inventory_value"`
	InventoryItems int             `db:"inventory_items" json:"inventory_items"`
	ProductUnits   int             `db:"product_units" json:"product_units"`
	Products       int             `db:"products" json:"products"`
	ActiveOrders   int             `db:"active_orders" json:"active_orders"`
	TotalOrders    int             `db:"total_orders" json:"total_orders"`
	MonthlyRevenue decimal.Decimal `db:"monthly_revenue" json:"monthly_revenue"`
	TeamMembers    int             `db:"team_members" json:"team_members"`
}

type Summary struct {
	Totals
	LowStock     []costing.StockLevel `json:"low_stock"`
	RecentOrders []model.Order        `json:"recent_orders"`
	GeneratedAt  time.Time            `json:"generated_at"`
}

type Step struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

type Checklist struct {
	Steps     []Step `json:"steps"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Progress  int    `json:"progress"`
}
