package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ecommerce-api/internal/apperr"
	"github.com/MikeMC777/ecommerce-api/internal/postgres"
)

var ErrNotFound = apperr.NotFound("Order")

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, q Query) ([]Order, int, error)
	Update(ctx context.Context, id string, req OrderRequest) (*Order, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const columns = `id, date, total_price, customer_name, customer_email, user_id, created_at, updated_at`

func scan(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Date, &o.TotalPrice, &o.CustomerName, &o.CustomerEmail,
		&o.UserID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PGRepo) Create(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO orders (id, date, total_price, customer_name, customer_email, user_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
		RETURNING created_at, updated_at
	`, o.ID, o.Date, o.TotalPrice, o.CustomerName, o.CustomerEmail, o.UserID).Scan(&o.CreatedAt, &o.UpdatedAt)
	return postgres.Classify(err)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return nil, postgres.NotFound(err, ErrNotFound)
	}
	return o, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Order, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	where := `
		WHERE ($1 = '' OR customer_name ILIKE '%'||$1||'%')
		  AND ($2 = '' OR user_id::text = $2)`

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, q.CustomerName, q.UserID).Scan(&total); err != nil {
		return nil, 0, postgres.Classify(err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+columns+`
		FROM orders`+where+`
		ORDER BY customer_name ASC
		LIMIT $3 OFFSET $4
	`, q.CustomerName, q.UserID, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, postgres.Classify(err)
	}
	defer rows.Close()

	out := []Order{}
	for rows.Next() {
		o, err := scan(rows)
		if err != nil {
			return nil, 0, postgres.Classify(err)
		}
		out = append(out, *o)
	}
	return out, total, postgres.Classify(rows.Err())
}

// Update replaces the order's fields. total_price is kept as stored when req
// omits it.
func (r *PGRepo) Update(ctx context.Context, id string, req OrderRequest) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	o, err := scan(r.db.QueryRow(ctx, `
		UPDATE orders
		SET date = $2,
		    total_price = COALESCE($3, total_price),
		    customer_name = $4,
		    customer_email = $5,
		    user_id = $6,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+columns,
		id, req.Date, req.TotalPrice, req.CustomerName, req.CustomerEmail, req.UserID))
	if err != nil {
		return nil, postgres.NotFound(err, ErrNotFound)
	}
	return o, nil
}

// Delete removes the order; its order items go with it through ON DELETE CASCADE.
func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	if err != nil {
		return false, postgres.Classify(err)
	}
	return cmd.RowsAffected() > 0, nil
}

// GetForUpdate reads the order and holds a row lock on it until the
// surrounding transaction ends. It returns nil, nil when no row matches.
func GetForUpdate(ctx context.Context, q postgres.Querier, id string) (*Order, error) {
	o, err := scan(q.QueryRow(ctx, `SELECT `+columns+` FROM orders WHERE id=$1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

// AddToTotal adds delta (which may be negative) to total_price.
func AddToTotal(ctx context.Context, q postgres.Querier, id string, delta decimal.Decimal) error {
	tag, err := q.Exec(ctx, `
		UPDATE orders SET total_price = total_price + $2, updated_at = NOW()
		WHERE id = $1
	`, id, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
