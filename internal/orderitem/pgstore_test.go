package orderitem

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ecommerce-api/internal/apperr"
	"github.com/MikeMC777/ecommerce-api/internal/category"
	"github.com/MikeMC777/ecommerce-api/internal/order"
	"github.com/MikeMC777/ecommerce-api/internal/postgres"
	"github.com/MikeMC777/ecommerce-api/internal/product"
	"github.com/MikeMC777/ecommerce-api/internal/user"
)

// pgFixture is one user, category, product and empty order in a real database.
type pgFixture struct {
	pool      *pgxpool.Pool
	orderID   string
	productID string
	userID    string
	catID     string
}

// newPGFixture runs against a real server when POSTGRES_DSN is set. The
// product has stock 20 and the given price.
func newPGFixture(t *testing.T, price decimal.Decimal) pgFixture {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := postgres.Connect(ctx, dsn, postgres.Options{MaxConns: 16})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	applySchema(t, pool)

	f := pgFixture{pool: pool, orderID: uuid.NewString(), productID: uuid.NewString(), userID: uuid.NewString(), catID: uuid.NewString()}
	if err := user.NewPGRepo(pool).Create(ctx, &user.User{
		ID: f.userID, Name: "Ana", Email: f.userID + "@mail.com", PasswordHash: "x", Role: user.RoleAdmin,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := category.NewPGRepo(pool).Create(ctx, &category.Category{ID: f.catID, Name: "Peripherals"}); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	if err := product.NewPGRepo(pool).Create(ctx, &product.Product{
		ID: f.productID, Name: "Keyboard", Description: "60%", Price: price,
		QuantityInStock: 20, CategoryID: f.catID, UserID: f.userID,
	}); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if err := order.NewPGRepo(pool).Create(ctx, &order.Order{
		ID: f.orderID, Date: time.Now().UTC(), TotalPrice: decimal.Zero,
		CustomerName: "Ana", CustomerEmail: "ana@mail.com", UserID: f.userID,
	}); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	t.Cleanup(func() {
		ctx := context.Background()
		// order_items go with the order through ON DELETE CASCADE.
		_, _ = pool.Exec(ctx, `DELETE FROM orders WHERE id=$1`, f.orderID)
		_, _ = pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, f.productID)
		_, _ = pool.Exec(ctx, `DELETE FROM categories WHERE id=$1`, f.catID)
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, f.userID)
	})
	return f
}

// applySchema runs schema.sql one statement at a time.
func applySchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	b, err := os.ReadFile("../postgres/schema.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	var lines []string
	for _, l := range strings.Split(string(b), "\n") {
		if !strings.HasPrefix(strings.TrimSpace(l), "--") {
			lines = append(lines, l)
		}
	}
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := pool.Exec(context.Background(), stmt); err != nil {
			t.Fatalf("schema: %v\n%s", err, stmt)
		}
	}
}

func (f pgFixture) input(qty int, price decimal.Decimal) Input {
	return Input{OrderID: f.orderID, ProductID: f.productID, Quantity: qty, UnitPrice: price}
}

func (f pgFixture) state(t *testing.T) (int, decimal.Decimal) {
	t.Helper()
	ctx := context.Background()
	p, err := product.NewPGRepo(f.pool).GetByID(ctx, f.productID)
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	o, err := order.NewPGRepo(f.pool).GetByID(ctx, f.orderID)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	return p.QuantityInStock, o.TotalPrice
}

func TestPGStore_ConcurrentCreatesDoNotOversell(t *testing.T) {
	price := decimal.NewFromInt(1000)
	f := newPGFixture(t, price)
	r := NewReconciler(NewPGStore(f.pool), WithMaxAttempts(10), WithBackoff(5*time.Millisecond))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok       int
		rejected int
	)
	start := make(chan struct{})
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := r.Create(context.Background(), f.input(15, price))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, ErrInsufficientStock), apperr.Is(err, apperr.KindConflict):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if ok != 1 || rejected != 1 {
		t.Fatalf("ok=%d rejected=%d, want exactly one success", ok, rejected)
	}
	stock, total := f.state(t)
	if stock != 5 || !total.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("stock=%d total=%s, want 5 and 15000", stock, total)
	}
}

func TestPGStore_ManyCreatesKeepStockConsistent(t *testing.T) {
	price := decimal.NewFromInt(10)
	f := newPGFixture(t, price)
	r := NewReconciler(NewPGStore(f.pool), WithMaxAttempts(20), WithBackoff(2*time.Millisecond))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Create(context.Background(), f.input(5, price))
			if err != nil && !errors.Is(err, ErrInsufficientStock) && !apperr.Is(err, apperr.KindConflict) {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	stock, total := f.state(t)
	if ok < 1 || ok > 4 || stock != 20-5*ok || stock < 0 {
		t.Fatalf("ok=%d stock=%d", ok, stock)
	}
	if !total.Equal(decimal.NewFromInt(int64(50 * ok))) {
		t.Fatalf("total=%s, want %d", total, 50*ok)
	}
	items, err := r.ListByOrder(context.Background(), f.orderID)
	if err != nil || len(items) != ok {
		t.Fatalf("items=%d err=%v, want %d", len(items), err, ok)
	}
}

func TestPGStore_CreateDeleteRoundTrip(t *testing.T) {
	price := decimal.RequireFromString("12.50")
	f := newPGFixture(t, price)
	r := NewReconciler(NewPGStore(f.pool))

	it, err := r.Create(context.Background(), f.input(10, price))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if stock, total := f.state(t); stock != 10 || !total.Equal(decimal.NewFromInt(125)) {
		t.Fatalf("after create stock=%d total=%s", stock, total)
	}
	if _, err := r.Delete(context.Background(), it.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if stock, total := f.state(t); stock != 20 || !total.IsZero() {
		t.Fatalf("after delete stock=%d total=%s, want 20 and 0", stock, total)
	}
	if _, err := r.Delete(context.Background(), it.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}

func TestPGStore_FailedChecksLeaveRowsUntouched(t *testing.T) {
	price := decimal.NewFromInt(1000)
	f := newPGFixture(t, price)
	r := NewReconciler(NewPGStore(f.pool))

	if _, err := r.Create(context.Background(), f.input(21, price)); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock, got %v", err)
	}
	if _, err := r.Create(context.Background(), f.input(5, decimal.NewFromInt(999))); !errors.Is(err, ErrPriceMismatch) {
		t.Fatalf("want ErrPriceMismatch, got %v", err)
	}
	if stock, total := f.state(t); stock != 20 || !total.IsZero() {
		t.Fatalf("stock=%d total=%s, want 20 and 0", stock, total)
	}
}

// Product and order edits made through their repositories must not undo
// what committed order items did to stock and totals.
func TestPGStore_RepoUpdatesKeepReconciledColumns(t *testing.T) {
	price := decimal.NewFromInt(1000)
	f := newPGFixture(t, price)
	ctx := context.Background()

	if _, err := NewReconciler(NewPGStore(f.pool)).Create(ctx, f.input(10, price)); err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Keyboard Pro"
	p, err := product.NewPGRepo(f.pool).Update(ctx, f.productID, product.UpdateProductRequest{
		Name: &name, CategoryID: f.catID, UserID: f.userID,
	})
	if err != nil {
		t.Fatalf("product update: %v", err)
	}
	if p.Name != name || p.QuantityInStock != 10 || !p.Price.Equal(price) {
		t.Fatalf("product after rename: %+v", p)
	}

	o, err := order.NewPGRepo(f.pool).Update(ctx, f.orderID, order.OrderRequest{
		Date: time.Now().UTC(), CustomerName: "Ana María", CustomerEmail: "ana@mail.com", UserID: f.userID,
	})
	if err != nil {
		t.Fatalf("order update: %v", err)
	}
	if o.CustomerName != "Ana María" || !o.TotalPrice.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("order after edit: %+v", o)
	}

	if _, err := product.NewPGRepo(f.pool).Update(ctx, uuid.NewString(), product.UpdateProductRequest{
		Name: &name, CategoryID: f.catID, UserID: f.userID,
	}); !errors.Is(err, product.ErrNotFound) {
		t.Fatalf("want product.ErrNotFound, got %v", err)
	}
}
