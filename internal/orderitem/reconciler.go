package orderitem

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ecommerce-api/internal/apperr"
	"github.com/MikeMC777/ecommerce-api/internal/order"
	"github.com/MikeMC777/ecommerce-api/internal/product"
)

const (
	EventCreated = "OrderItemCreated"
	EventUpdated = "OrderItemUpdated"
	EventDeleted = "OrderItemDeleted"
)

var (
	ErrInsufficientStock = apperr.Invalid("The quantity of the ordered item exceeds the available stock")
	ErrPriceMismatch     = apperr.Invalid("The unit price does not match the product price")
)

// Publisher receives committed mutations. Failures are logged, never returned
// to the caller.
type Publisher interface {
	Publish(ctx context.Context, key, eventType string, payload any) error
}

// Reconciler keeps Product.quantityInStock and Order.totalPrice consistent
// with the order items that reference them.
type Reconciler struct {
	store        Store
	pub          Publisher
	maxAttempts  int
	legacyUpdate bool
	onRetry      func(op string)
	backoff      time.Duration
}

type Option func(*Reconciler)

func WithPublisher(p Publisher) Option { return func(r *Reconciler) { r.pub = p } }

// WithMaxAttempts bounds how many times a transaction is run when it keeps
// failing with a serialization conflict.
func WithMaxAttempts(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithLegacyUpdate makes Update apply the new line on top of the old one
// without first reversing the old contribution.
func WithLegacyUpdate(on bool) Option { return func(r *Reconciler) { r.legacyUpdate = on } }

func WithRetryObserver(fn func(op string)) Option { return func(r *Reconciler) { r.onRetry = fn } }

func WithBackoff(d time.Duration) Option { return func(r *Reconciler) { r.backoff = d } }

func NewReconciler(store Store, opts ...Option) *Reconciler {
	r := &Reconciler{store: store, maxAttempts: 3, backoff: 20 * time.Millisecond}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Reconciler) Create(ctx context.Context, in Input) (*OrderItem, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var out *OrderItem
	err := r.run(ctx, "create", func(ctx context.Context, tx Tx) error {
		o, err := tx.LockOrder(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return order.ErrNotFound
		}
		p, err := tx.LockProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return product.ErrNotFound
		}
		if err := checkLine(p, p.QuantityInStock, in); err != nil {
			return err
		}

		it := &OrderItem{
			ID:        uuid.NewString(),
			OrderID:   o.ID,
			ProductID: p.ID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
		}
		if err := tx.AdjustStock(ctx, p.ID, -in.Quantity); err != nil {
			return err
		}
		if err := tx.AdjustOrderTotal(ctx, o.ID, it.LineTotal()); err != nil {
			return err
		}
		if err := tx.Insert(ctx, it); err != nil {
			return err
		}
		out = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.publish(ctx, EventCreated, *out)
	return out, nil
}

func (r *Reconciler) Get(ctx context.Context, id string) (*OrderItem, error) {
	return r.store.GetByID(ctx, id)
}

func (r *Reconciler) Update(ctx context.Context, id string, in Input) (*OrderItem, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var out *OrderItem
	err := r.run(ctx, "update", func(ctx context.Context, tx Tx) error {
		old, err := tx.LockItem(ctx, id)
		if err != nil {
			return err
		}
		if old == nil {
			return ErrNotFound
		}
		var it *OrderItem
		if r.legacyUpdate {
			it, err = applyLegacy(ctx, tx, old, in)
		} else {
			it, err = applyReplace(ctx, tx, old, in)
		}
		if err != nil {
			return err
		}
		out = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.publish(ctx, EventUpdated, *out)
	return out, nil
}

// applyReplace reverses the old item's contribution and applies the new one.
// Rows are locked orders first, then products, each set in id order.
func applyReplace(ctx context.Context, tx Tx, old *OrderItem, in Input) (*OrderItem, error) {
	orders := map[string]*order.Order{}
	for _, oid := range sortedIDs(old.OrderID, in.OrderID) {
		o, err := tx.LockOrder(ctx, oid)
		if err != nil {
			return nil, err
		}
		orders[oid] = o
	}
	if orders[in.OrderID] == nil {
		return nil, order.ErrNotFound
	}
	products := map[string]*product.Product{}
	for _, pid := range sortedIDs(old.ProductID, in.ProductID) {
		p, err := tx.LockProduct(ctx, pid)
		if err != nil {
			return nil, err
		}
		products[pid] = p
	}
	p := products[in.ProductID]
	if p == nil {
		return nil, product.ErrNotFound
	}

	available := p.QuantityInStock
	if old.ProductID == p.ID {
		available += old.Quantity
	}
	if err := checkLine(p, available, in); err != nil {
		return nil, err
	}

	stock := map[string]int{}
	total := map[string]decimal.Decimal{}
	if products[old.ProductID] != nil {
		stock[old.ProductID] += old.Quantity
	}
	if orders[old.OrderID] != nil {
		total[old.OrderID] = total[old.OrderID].Sub(old.LineTotal())
	}
	stock[in.ProductID] -= in.Quantity
	total[in.OrderID] = total[in.OrderID].Add(in.lineTotal())

	for _, pid := range sortedIDs(old.ProductID, in.ProductID) {
		if d := stock[pid]; d != 0 {
			if err := tx.AdjustStock(ctx, pid, d); err != nil {
				return nil, err
			}
		}
	}
	for _, oid := range sortedIDs(old.OrderID, in.OrderID) {
		if d := total[oid]; !d.IsZero() {
			if err := tx.AdjustOrderTotal(ctx, oid, d); err != nil {
				return nil, err
			}
		}
	}
	return persist(ctx, tx, old, in)
}

// applyLegacy validates against current stock and adds the new line without
// reversing the old one.
func applyLegacy(ctx context.Context, tx Tx, old *OrderItem, in Input) (*OrderItem, error) {
	o, err := tx.LockOrder(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, order.ErrNotFound
	}
	p, err := tx.LockProduct(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, product.ErrNotFound
	}
	if err := checkLine(p, p.QuantityInStock, in); err != nil {
		return nil, err
	}
	if err := tx.AdjustStock(ctx, p.ID, -in.Quantity); err != nil {
		return nil, err
	}
	if err := tx.AdjustOrderTotal(ctx, o.ID, in.lineTotal()); err != nil {
		return nil, err
	}
	return persist(ctx, tx, old, in)
}

func persist(ctx context.Context, tx Tx, old *OrderItem, in Input) (*OrderItem, error) {
	it := *old
	it.OrderID = in.OrderID
	it.ProductID = in.ProductID
	it.Quantity = in.Quantity
	it.UnitPrice = in.UnitPrice
	if err := tx.Update(ctx, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// Delete restores the item's stock and subtracts its line total, returning
// the item as it was before deletion.
func (r *Reconciler) Delete(ctx context.Context, id string) (*OrderItem, error) {
	var out *OrderItem
	err := r.run(ctx, "delete", func(ctx context.Context, tx Tx) error {
		it, err := tx.LockItem(ctx, id)
		if err != nil {
			return err
		}
		if it == nil {
			return ErrNotFound
		}
		o, err := tx.LockOrder(ctx, it.OrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return order.ErrNotFound
		}
		p, err := tx.LockProduct(ctx, it.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return product.ErrNotFound
		}
		if err := tx.AdjustStock(ctx, p.ID, it.Quantity); err != nil {
			return err
		}
		if err := tx.AdjustOrderTotal(ctx, o.ID, it.LineTotal().Neg()); err != nil {
			return err
		}
		if err := tx.Delete(ctx, it.ID); err != nil {
			return err
		}
		out = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.publish(ctx, EventDeleted, *out)
	return out, nil
}

func (r *Reconciler) List(ctx context.Context, f Filter, page, size int) (*Page, error) {
	if page < 1 || size < 1 || f.QuantityMin < 0 || f.QuantityMax < 0 {
		return nil, apperr.Invalid("Invalid query Request")
	}
	if f.QuantityMin == 0 {
		f.QuantityMin = 1
	}
	items, total, err := r.store.List(ctx, f, size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	return &Page{
		Items:       items,
		CurrentPage: page,
		TotalData:   total,
		TotalPage:   (total + size - 1) / size,
	}, nil
}

func (r *Reconciler) ListByOrder(ctx context.Context, orderID string) ([]OrderItem, error) {
	return r.store.ListByOrder(ctx, orderID)
}

// run executes fn in a transaction, retrying serialization conflicts up to
// maxAttempts times.
func (r *Reconciler) run(ctx context.Context, op string, fn func(ctx context.Context, tx Tx) error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = r.store.InTx(ctx, fn)
		if err == nil || !apperr.Is(err, apperr.KindConflict) || attempt >= r.maxAttempts {
			return err
		}
		log.Printf("[orderitem] op=%s attempt=%d conflict, retrying: %v", op, attempt, err)
		if r.onRetry != nil {
			r.onRetry(op)
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(time.Duration(attempt) * r.backoff):
		}
	}
}

func (r *Reconciler) publish(ctx context.Context, eventType string, it OrderItem) {
	if r.pub == nil {
		return
	}
	if err := r.pub.Publish(ctx, it.OrderID, eventType, it); err != nil {
		log.Printf("[orderitem] publish %s id=%s: %v", eventType, it.ID, err)
	}
}

// checkLine validates stock before price, both before anything is written.
func checkLine(p *product.Product, available int, in Input) error {
	if in.Quantity > available {
		return ErrInsufficientStock
	}
	if !in.UnitPrice.Equal(p.Price) {
		return ErrPriceMismatch
	}
	return nil
}

func sortedIDs(a, b string) []string {
	if a == b {
		return []string{a}
	}
	ids := []string{a, b}
	sort.Strings(ids)
	return ids
}
