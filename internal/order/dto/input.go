package dto

import "github.com/fekuna/omnipos-backoffice-service/internal/model"

type CreateOrderInput struct {
	BusinessID    string  `json:"-"`
	UserID        string  `json:"-"`
	ClientName    string  `json:"client_name"`
	ClientContact *string `json:"client_contact"`
	ProductID     string  `json:"product_id"`
	Quantity      int     `json:"quantity"`
	DeliveryInfo  *string `json:"delivery_info"`
	PaymentMethod *string `json:"payment_method"`
}

type UpdateOrderInput struct {
	BusinessID    string  `json:"-"`
	UserID        string  `json:"-"`
	ID            string  `json:"-"`
	ClientName    string  `json:"client_name"`
	ClientContact *string `json:"client_contact"`
	Quantity      int     `json:"quantity"`
	DeliveryInfo  *string `json:"delivery_info"`
	PaymentMethod *string `json:"payment_method"`
}

type StatusInput struct {
	BusinessID string            `json:"-"`
	UserID     string            `json:"-"`
	ID         string            `json:"-"`
	Status     model.OrderStatus `json:"status" binding:"required"`
}

// AssignDriverInput unassigns the order when DriverID is nil.
type AssignDriverInput struct {
	BusinessID string  `json:"-"`
	ID         string  `json:"-"`
	DriverID   *string `json:"driver_id"`
}
