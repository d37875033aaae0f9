package orderitem

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ecommerce-api/internal/apperr"
)

type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// LineTotal is quantity × unitPrice.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Input payload of create and update.
// swagger:model OrderItemInput
type Input struct {
	OrderID   string          `json:"orderId"   binding:"required,uuid"`
	ProductID string          `json:"productId" binding:"required,uuid"`
	Quantity  int             `json:"quantity"  binding:"required" example:"10"`
	UnitPrice decimal.Decimal `json:"unitPrice" swaggertype:"number" example:"1000"`
}

func (in Input) Validate() error {
	switch {
	case in.OrderID == "":
		return apperr.Invalid("orderId is required")
	case in.ProductID == "":
		return apperr.Invalid("productId is required")
	case in.Quantity <= 0:
		return apperr.Invalid("quantity must be a positive integer")
	case !in.UnitPrice.IsPositive():
		return apperr.Invalid("unitPrice must be positive")
	}
	return nil
}

func (in Input) lineTotal() decimal.Decimal {
	return in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity)))
}

// Filter bounds the quantity of listed items. Zero QuantityMin means 1 and
// zero QuantityMax means unbounded.
type Filter struct {
	QuantityMin int
	QuantityMax int
}

type Page struct {
	Items       []OrderItem `json:"data"`
	CurrentPage int         `json:"currentPage"`
	TotalData   int         `json:"totalData"`
	TotalPage   int         `json:"totalPage"`
}
