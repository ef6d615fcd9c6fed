package dto

import (
	"io"

	"github.com/shopspring/decimal"
)

// ItemInput leaves optional numbers nil so defaults can be told apart from zero.
type ItemInput struct {
	BusinessID   string           `json:"-"`
	Name         string           `json:"name" binding:"required"`
	Category     *string          `json:"category"`
	ImageURL     *string          `json:"image_url"`
	Quantity     *float64         `json:"quantity"`
	UnitCost     *decimal.Decimal `json:"unit_cost"`
	TotalCost    *decimal.Decimal `json:"total_cost"`
	ReorderLevel *float64         `json:"reorder_level"`
}

type UpdateItemInput struct {
	ItemInput
	ID     string `json:"-"`
	UserID string `json:"-"`
}

const (
	AdjustAdd    = "add"
	AdjustRemove = "remove"
)

type AdjustInput struct {
	BusinessID string  `json:"-"`
	ItemID     string  `json:"-"`
	UserID     string  `json:"-"`
	Type       string  `json:"type" binding:"required"`
	Quantity   float64 `json:"quantity"`
	Reason     string  `json:"reason"`
}

type ImageInput struct {
	BusinessID  string
	ItemID      string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
