package orderitem

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ecommerce-api/internal/apperr"
	"github.com/MikeMC777/ecommerce-api/internal/order"
	"github.com/MikeMC777/ecommerce-api/internal/postgres"
	"github.com/MikeMC777/ecommerce-api/internal/product"
)

var ErrNotFound = apperr.NotFound("OrderItem")

type PGStore struct{ db *pgxpool.Pool }

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

const columns = `id, order_id, product_id, quantity, unit_price, created_at, updated_at`

func scan(row pgx.Row) (*OrderItem, error) {
	var it OrderItem
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func collect(rows pgx.Rows) ([]OrderItem, error) {
	defer rows.Close()
	out := []OrderItem{}
	for rows.Next() {
		it, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func (s *PGStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return postgres.InTx(ctx, s.db, func(tx pgx.Tx) error {
		return fn(ctx, pgTx{tx: tx})
	})
}

func (s *PGStore) GetByID(ctx context.Context, id string) (*OrderItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	it, err := scan(s.db.QueryRow(ctx, `SELECT `+columns+` FROM order_items WHERE id=$1`, id))
	if err != nil {
		return nil, postgres.NotFound(err, ErrNotFound)
	}
	return it, nil
}

// List pages the items whose quantity lies in the filter bounds, oldest first.
// The count covers the filtered rows only.
func (s *PGStore) List(ctx context.Context, f Filter, limit, offset int) ([]OrderItem, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	where := ` WHERE quantity >= $1 AND ($2 = 0 OR quantity <= $2)`

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM order_items`+where, f.QuantityMin, f.QuantityMax).Scan(&total); err != nil {
		return nil, 0, postgres.Classify(err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+columns+`
		FROM order_items`+where+`
		ORDER BY created_at ASC, id ASC
		LIMIT $3 OFFSET $4
	`, f.QuantityMin, f.QuantityMax, limit, offset)
	if err != nil {
		return nil, 0, postgres.Classify(err)
	}
	out, err := collect(rows)
	if err != nil {
		return nil, 0, postgres.Classify(err)
	}
	return out, total, nil
}

func (s *PGStore) ListByOrder(ctx context.Context, orderID string) ([]OrderItem, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT `+columns+` FROM order_items WHERE order_id=$1 ORDER BY created_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, postgres.Classify(err)
	}
	out, err := collect(rows)
	return out, postgres.Classify(err)
}

type pgTx struct{ tx pgx.Tx }

func (t pgTx) LockItem(ctx context.Context, id string) (*OrderItem, error) {
	it, err := scan(t.tx.QueryRow(ctx, `SELECT `+columns+` FROM order_items WHERE id=$1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return it, err
}

func (t pgTx) LockOrder(ctx context.Context, id string) (*order.Order, error) {
	return order.GetForUpdate(ctx, t.tx, id)
}

func (t pgTx) LockProduct(ctx context.Context, id string) (*product.Product, error) {
	return product.GetForUpdate(ctx, t.tx, id)
}

func (t pgTx) AdjustStock(ctx context.Context, productID string, delta int) error {
	return product.AdjustStock(ctx, t.tx, productID, delta)
}

func (t pgTx) AdjustOrderTotal(ctx context.Context, orderID string, delta decimal.Decimal) error {
	return order.AddToTotal(ctx, t.tx, orderID, delta)
}

func (t pgTx) Insert(ctx context.Context, it *OrderItem) error {
	return t.tx.QueryRow(ctx, `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,NOW(),NOW())
		RETURNING created_at, updated_at
	`, it.ID, it.OrderID, it.ProductID, it.Quantity, it.UnitPrice).Scan(&it.CreatedAt, &it.UpdatedAt)
}

func (t pgTx) Update(ctx context.Context, it *OrderItem) error {
	err := t.tx.QueryRow(ctx, `
		UPDATE order_items
		SET order_id = $2, product_id = $3, quantity = $4, unit_price = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, it.ID, it.OrderID, it.ProductID, it.Quantity, it.UnitPrice).Scan(&it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (t pgTx) Delete(ctx context.Context, id string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM order_items WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
