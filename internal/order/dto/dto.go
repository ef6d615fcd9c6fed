package dto

import (
	"time"

	"github.com/fekuna/omnipos-backoffice-service/internal/model"
)

type OrderFilters struct {
	BusinessID string
	Search     string              // client or product name
	Statuses   []model.OrderStatus // any of
	DateFrom   *time.Time          // inclusive, by day
	DateTo     *time.Time          // inclusive, by day
	Page       int
	PageSize   int
}

// OrderList carries the page plus the business-wide and filtered counts.
type OrderList struct {
	Orders   []model.Order `json:"orders"`
	Total    int           `json:"total"`
	Filtered int           `json:"filtered"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

type KanbanColumn struct {
	Status model.OrderStatus `json:"status"`
	Count  int               `json:"count"`
	Orders []model.Order     `json:"orders"`
}

type Kanban struct {
	Columns []KanbanColumn `json:"columns"`
}

type DeliveryView struct {
	DriverToken string     `json:"driver_token"`
	Link        string     `json:"link"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
	PhotoURL    *string    `json:"delivery_photo_url"`
	Notes       *string    `json:"driver_notes"`
}

type OrderDetail struct {
	model.Order
	Delivery *DeliveryView `json:"delivery"`
}

// DriverOrder is an assigned order with its confirmation columns.
type DriverOrder struct {
	model.Order
	DriverToken *string    `db:"driver_token" json:"driver_token"`
	ConfirmedAt *time.Time `db:"confirmed_at" json:"confirmed_at"`
	Link        string     `db:"-" json:"link,omitempty"`
}

type DriverDashboard struct {
	Pending        []DriverOrder `json:"pending"`
	Completed      []DriverOrder `json:"completed"`
	PendingCount   int           `json:"pending_count"`
	CompletedCount int           `json:"completed_count"`
	CompletedToday int           `json:"completed_today"`
}
