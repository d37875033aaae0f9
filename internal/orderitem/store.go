package orderitem

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ecommerce-api/internal/order"
	"github.com/MikeMC777/ecommerce-api/internal/product"
)

// Store is the persistence the reconciler runs against. InTx must commit only
// when fn returns nil and roll back otherwise, including on ctx cancellation.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	GetByID(ctx context.Context, id string) (*OrderItem, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]OrderItem, int, error)
	ListByOrder(ctx context.Context, orderID string) ([]OrderItem, error)
}

// Tx is the row-level view of one transaction. Lock* return nil, nil when
// the row is absent; the row stays locked until the transaction ends.
type Tx interface {
	LockItem(ctx context.Context, id string) (*OrderItem, error)
	LockOrder(ctx context.Context, id string) (*order.Order, error)
	LockProduct(ctx context.Context, id string) (*product.Product, error)
	AdjustStock(ctx context.Context, productID string, delta int) error
	AdjustOrderTotal(ctx context.Context, orderID string, delta decimal.Decimal) error
	Insert(ctx context.Context, it *OrderItem) error
	Update(ctx context.Context, it *OrderItem) error
	Delete(ctx context.Context, id string) error
}
