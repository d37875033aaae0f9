package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	QuantityInStock int             `json:"quantityInStock"`
	CategoryID      string          `json:"categoryId"`
	UserID          string          `json:"userId"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Listing bounds used when priceCheap / priceExpensive are absent.
var (
	DefaultPriceMin = decimal.NewFromInt(10)
	NoPriceLimit    = decimal.NewFromInt(1_000_000_000)
)

// Query filters the product listing. Name matches as a case-insensitive substring.
type Query struct {
	Name     string
	PriceMin decimal.Decimal
	PriceMax decimal.Decimal
	UserID   string
	Limit    int
	Offset   int
}

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name            string          `json:"name"            binding:"required" example:"Mechanical Keyboard"`
	Description     string          `json:"description"     binding:"required" example:"RGB 60%"`
	Price           decimal.Decimal `json:"price"           swaggertype:"number" example:"1000"`
	QuantityInStock *int            `json:"quantityInStock" binding:"required" example:"20"`
	CategoryID      string          `json:"categoryId"      binding:"required,uuid"`
	UserID          string          `json:"userId"          binding:"required,uuid"`
}

// UpdateProductRequest payload of partial update. Omitted fields are kept.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	Price           *decimal.Decimal `json:"price" swaggertype:"number"`
	QuantityInStock *int             `json:"quantityInStock"`
	CategoryID      string           `json:"categoryId" binding:"required,uuid"`
	UserID          string           `json:"userId"     binding:"required,uuid"`
}
