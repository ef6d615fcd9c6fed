package dto

import "time"

type OrdersReportInput struct {
	BusinessID string
	From       time.Time
	To         time.Time
}

type Document struct {
	Filename string
	Content  []byte
}
