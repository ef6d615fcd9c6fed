package model

import (
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusNewInquiry       OrderStatus = "New Inquiry"
	StatusInProgress       OrderStatus = "In Progress"
	StatusDepositReceived  OrderStatus = "Deposit Received"
	StatusReadyForDelivery OrderStatus = "Ready for Delivery"
	StatusCompleted        OrderStatus = "Completed"
	StatusCancelled        OrderStatus = "Cancelled"
)

// OrderStatuses is the kanban column order.
var OrderStatuses = []OrderStatus{
	StatusNewInquiry,
	StatusInProgress,
	StatusDepositReceived,
	StatusReadyForDelivery,
	StatusCompleted,
	StatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, st := range OrderStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Active orders still hold a claim on the workflow (not Completed or Cancelled).
func (s OrderStatus) Active() bool {
	return s.Valid() && s != StatusCompleted && s != StatusCancelled
}

// ValidStatusTransition: active statuses move freely, Completed may only be
// cancelled and Cancelled is terminal.
func ValidStatusTransition(from, to OrderStatus) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	switch from {
	case StatusCancelled:
		return false
	case StatusCompleted:
		return to == StatusCancelled
	}
	return true
}

type Order struct {
	BaseModel
	BusinessID       string          `db:"business_id" json:"business_id"`
	ClientName       string          `db:"client_name" json:"client_name"`
	ClientContact    *string         `db:"client_contact" json:"client_contact"`
	ProductID        *string         `db:"product_id" json:"product_id"`
	ProductName      string          `db:"product_name" json:"product_name"`
	Quantity         int             `db:"quantity" json:"quantity"`
	SalePrice        decimal.Decimal `db:"sale_price" json:"sale_price"`
	Status           OrderStatus     `db:"status" json:"status"`
	DeliveryInfo     *string         `db:"delivery_info" json:"delivery_info"`
	PaymentMethod    *string         `db:"payment_method" json:"payment_method"`
	AssignedDriverID *string         `db:"assigned_driver_id" json:"assigned_driver_id"`
	StockCommitted   bool            `db:"stock_committed" json:"stock_committed"`
}

// UnitPrice is the per-unit share of the stored order total.
func (o Order) UnitPrice() decimal.Decimal {
	if o.Quantity <= 0 {
		return decimal.Zero
	}
	return o.SalePrice.Div(decimal.NewFromInt(int64(o.Quantity)))
}
