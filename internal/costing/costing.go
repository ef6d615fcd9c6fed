// Package costing holds the derived metrics shared by inventory, products,
// orders and the dashboard. Everything here is pure and works on values
// loaded by the repositories.
package costing

import (
	"github.com/fekuna/omnipos-backoffice-service/internal/model"
	"github.com/shopspring/decimal"
)

const DefaultReorderLevel = 10.0

var (
	DefaultProfitMargin = decimal.NewFromInt(20)
	hundred             = decimal.NewFromInt(100)
)

// Reservation is one product component, joined with the product's current
// quantity_available.
type Reservation struct {
	InventoryItemID   string  `db:"inventory_item_id"`
	ProductID         string  `db:"product_id"`
	ComponentQuantity float64 `db:"component_quantity"`
	ProductQuantity   int     `db:"product_quantity"`
}

// Reserved sums component quantity × product quantity_available per item.
func Reserved(rs []Reservation) map[string]float64 {
	return ReservedExcluding(rs, "")
}

// ReservedExcluding is Reserved without the components of productID.
func ReservedExcluding(rs []Reservation, productID string) map[string]float64 {
	out := make(map[string]float64)
	for _, r := range rs {
		if productID != "" && r.ProductID == productID {
			continue
		}
		out[r.InventoryItemID] += r.ComponentQuantity * float64(r.ProductQuantity)
	}
	return out
}

func Available(onHand, reserved float64) float64 {
	return onHand - reserved
}

type CostLine struct {
	UnitCost decimal.Decimal
	Quantity float64
}

func TotalCost(lines []CostLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitCost.Mul(decimal.NewFromFloat(l.Quantity)))
	}
	return total
}

// SalePrice applies margin percent to cost, rounded to cents.
func SalePrice(totalCost, margin decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(margin.Div(hundred))
	return totalCost.Mul(factor).Round(2)
}

// ItemTotalCost is quantity × unit cost, rounded to cents.
func ItemTotalCost(quantity float64, unitCost decimal.Decimal) decimal.Decimal {
	return unitCost.Mul(decimal.NewFromFloat(quantity)).Round(2)
}

// UnitCostFromTotal derives the unit cost from a total; zero quantity yields zero.
func UnitCostFromTotal(quantity float64, total decimal.Decimal) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromFloat(quantity)).Round(4)
}

type StockLevel struct {
	InventoryItemID string  `json:"inventory_item_id"`
	Name            string  `json:"name"`
	Category        *string `json:"category"`
	OnHand          float64 `json:"quantity"`
	Reserved        float64 `json:"reserved"`
	Available       float64 `json:"available"`
	ReorderLevel    float64 `json:"reorder_level"`
}

func Level(item model.InventoryItem, reserved map[string]float64) StockLevel {
	reorder := item.ReorderLevel
	if reorder < 0 {
		reorder = DefaultReorderLevel
	}
	r := reserved[item.ID]
	return StockLevel{
		InventoryItemID: item.ID,
		Name:            item.Name,
		Category:        item.Category,
		OnHand:          item.Quantity,
		Reserved:        r,
		Available:       Available(item.Quantity, r),
		ReorderLevel:    reorder,
	}
}

func (s StockLevel) Low() bool {
	return s.Available < s.ReorderLevel
}

func (s StockLevel) Out() bool {
	return s.Available <= 0
}

// LowStock keeps the items whose availability is under their reorder level.
func LowStock(items []model.InventoryItem, reserved map[string]float64) []StockLevel {
	out := []StockLevel{}
	for _, item := range items {
		if lvl := Level(item, reserved); lvl.Low() {
			out = append(out, lvl)
		}
	}
	return out
}

// Requirement is what one component of a product needs from its item.
type Requirement struct {
	InventoryItemID string  `json:"inventory_item_id"`
	Name            string  `json:"name"`
	Required        float64 `json:"required"`
	OnHand          float64 `json:"on_hand"`
	Available       float64 `json:"available"`
}

// Exceeds reports a requirement larger than the stock physically on hand.
func (r Requirement) Exceeds() bool {
	return r.Required > r.OnHand
}

// Short reports a requirement larger than what other products leave available.
func (r Requirement) Short() bool {
	return r.Required > r.Available
}
