package model

import "time"

type DeliveryConfirmation struct {
	ID               string     `db:"id" json:"id"`
	BusinessID       string     `db:"business_id" json:"business_id"`
	OrderID          string     `db:"order_id" json:"order_id"`
	DriverToken      string     `db:"driver_token" json:"driver_token"`
	ConfirmedAt      *time.Time `db:"confirmed_at" json:"confirmed_at"`
	DeliveryPhotoURL *string    `db:"delivery_photo_url" json:"delivery_photo_url"`
	DriverNotes      *string    `db:"driver_notes" json:"driver_notes"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

func (d DeliveryConfirmation) Confirmed() bool {
	return d.ConfirmedAt != nil
}
