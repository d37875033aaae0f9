package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID            string          `json:"id"`
	Date          time.Time       `json:"date"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	UserID        string          `json:"userId"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type Query struct {
	CustomerName string
	UserID       string
	Limit        int
	Offset       int
}

// OrderRequest payload of creation and full update.
// swagger:model OrderRequest
type OrderRequest struct {
	Date          time.Time        `json:"date"          binding:"required" example:"2024-09-11T00:00:00Z"`
	TotalPrice    *decimal.Decimal `json:"totalPrice"    swaggertype:"number"`
	CustomerName  string           `json:"customerName"  binding:"required" example:"Ana Pérez"`
	CustomerEmail string           `json:"customerEmail" binding:"required,email" example:"ana@mail.com"`
	UserID        string           `json:"userId"        binding:"required,uuid"`
}
