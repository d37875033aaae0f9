package orderitem

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ecommerce-api/internal/apperr"
	"github.com/MikeMC777/ecommerce-api/internal/order"
	"github.com/MikeMC777/ecommerce-api/internal/product"
)

// memStore is an in-memory Store. Transactions run one at a time and restore
// a snapshot when fn fails, so rollback is observable.
type memStore struct {
	mu       sync.Mutex
	orders   map[string]order.Order
	products map[string]product.Product
	items    map[string]OrderItem
	seq      int

	conflicts  int   // next N transactions fail with a serialization conflict
	failInsert error // returned by Tx.Insert after the other writes were applied
	txCount    int
}

func newMemStore() *memStore {
	return &memStore{
		orders:   map[string]order.Order{},
		products: map[string]product.Product{},
		items:    map[string]OrderItem{},
	}
}

func (s *memStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txCount++
	if s.conflicts > 0 {
		s.conflicts--
		return apperr.Conflict("concurrent update, retry the request", errors.New("40001"))
	}

	snapOrders := make(map[string]order.Order, len(s.orders))
	for k, v := range s.orders {
		snapOrders[k] = v
	}
	snapProducts := make(map[string]product.Product, len(s.products))
	for k, v := range s.products {
		snapProducts[k] = v
	}
	snapItems := make(map[string]OrderItem, len(s.items))
	for k, v := range s.items {
		snapItems[k] = v
	}

	err := fn(ctx, memTx{s})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.orders, s.products, s.items = snapOrders, snapProducts, snapItems
		return err
	}
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id string) (*OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &it, nil
}

func (s *memStore) List(ctx context.Context, f Filter, limit, offset int) ([]OrderItem, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []OrderItem
	for _, it := range s.items {
		if it.Quantity >= f.QuantityMin && (f.QuantityMax == 0 || it.Quantity <= f.QuantityMax) {
			all = append(all, it)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return append([]OrderItem{}, all[offset:end]...), total, nil
}

func (s *memStore) ListByOrder(ctx context.Context, orderID string) ([]OrderItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []OrderItem{}
	for _, it := range s.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *memStore) stock(id string) int { return s.products[id].QuantityInStock }

func (s *memStore) total(id string) decimal.Decimal { return s.orders[id].TotalPrice }

type memTx struct{ s *memStore }

func (t memTx) LockItem(ctx context.Context, id string) (*OrderItem, error) {
	it, ok := t.s.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (t memTx) LockOrder(ctx context.Context, id string) (*order.Order, error) {
	o, ok := t.s.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (t memTx) LockProduct(ctx context.Context, id string) (*product.Product, error) {
	p, ok := t.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (t memTx) AdjustStock(ctx context.Context, productID string, delta int) error {
	p, ok := t.s.products[productID]
	if !ok {
		return product.ErrNotFound
	}
	p.QuantityInStock += delta
	if p.QuantityInStock < 0 {
		return apperr.Invalid("constraint violated")
	}
	t.s.products[productID] = p
	return nil
}

func (t memTx) AdjustOrderTotal(ctx context.Context, orderID string, delta decimal.Decimal) error {
	o, ok := t.s.orders[orderID]
	if !ok {
		return order.ErrNotFound
	}
	o.TotalPrice = o.TotalPrice.Add(delta)
	t.s.orders[orderID] = o
	return nil
}

func (t memTx) Insert(ctx context.Context, it *OrderItem) error {
	if t.s.failInsert != nil {
		return t.s.failInsert
	}
	t.s.seq++
	now := time.Unix(int64(t.s.seq), 0)
	it.CreatedAt, it.UpdatedAt = now, now
	t.s.items[it.ID] = *it
	return nil
}

func (t memTx) Update(ctx context.Context, it *OrderItem) error {
	if _, ok := t.s.items[it.ID]; !ok {
		return ErrNotFound
	}
	t.s.seq++
	it.UpdatedAt = time.Unix(int64(t.s.seq), 0)
	t.s.items[it.ID] = *it
	return nil
}

func (t memTx) Delete(ctx context.Context, id string) error {
	if _, ok := t.s.items[id]; !ok {
		return ErrNotFound
	}
	delete(t.s.items, id)
	return nil
}
