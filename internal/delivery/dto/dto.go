package dto

import (
	"io"

	"github.com/fekuna/omnipos-backoffice-service/internal/model"
)

// DeliveryDetail is what the public delivery page shows: the confirmation and
// the order it belongs to.
type DeliveryDetail struct {
	model.DeliveryConfirmation
	BusinessName string            `db:"business_name" json:"business_name"`
	ClientName   string            `db:"client_name" json:"client_name"`
	ProductName  string            `db:"product_name" json:"product_name"`
	Quantity     int               `db:"quantity" json:"quantity"`
	DeliveryInfo *string           `db:"delivery_info" json:"delivery_info"`
	OrderStatus  model.OrderStatus `db:"order_status" json:"order_status"`
}

type ConfirmInput struct {
	Token       string
	Notes       string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
