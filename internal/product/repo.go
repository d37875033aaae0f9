// Package product provides the repository interface and PostgreSQL implementation for managing products.
package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/ecommerce-api/internal/apperr"
	"github.com/MikeMC777/ecommerce-api/internal/postgres"
)

var ErrNotFound = apperr.NotFound("Product")

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, q Query) ([]Product, int, error)
	Update(ctx context.Context, id string, req UpdateProductRequest) (*Product, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const columns = `id, name, description, price, quantity_in_stock, category_id, user_id, created_at, updated_at`

func scan(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.QuantityInStock,
		&p.CategoryID, &p.UserID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO products (id, name, description, price, quantity_in_stock, category_id, user_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.Description, p.Price, p.QuantityInStock, p.CategoryID, p.UserID).Scan(&p.CreatedAt, &p.UpdatedAt)
	return postgres.Classify(err)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM products WHERE id=$1`, id))
	if err != nil {
		return nil, postgres.NotFound(err, ErrNotFound)
	}
	return p, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	search := strings.TrimSpace(q.Name)
	where := `
		WHERE ($1 = '' OR name ILIKE '%'||$1||'%')
		  AND price >= $2 AND price <= $3
		  AND ($4 = '' OR user_id::text = $4)`

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where,
		search, q.PriceMin, q.PriceMax, q.UserID).Scan(&total); err != nil {
		return nil, 0, postgres.Classify(err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+columns+`
		FROM products`+where+`
		ORDER BY created_at DESC
		LIMIT $5 OFFSET $6
	`, search, q.PriceMin, q.PriceMax, q.UserID, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, postgres.Classify(err)
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, 0, postgres.Classify(err)
		}
		out = append(out, *p)
	}
	return out, total, postgres.Classify(rows.Err())
}

// Update writes only the fields set in req; omitted columns keep their stored
// value, including stock moved by concurrent order-item transactions.
func (r *PGRepo) Update(ctx context.Context, id string, req UpdateProductRequest) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scan(r.db.QueryRow(ctx, `
		UPDATE products
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    price = COALESCE($4, price),
		    quantity_in_stock = COALESCE($5, quantity_in_stock),
		    category_id = $6,
		    user_id = $7,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING `+columns,
		id, req.Name, req.Description, req.Price, req.QuantityInStock, req.CategoryID, req.UserID))
	if err != nil {
		return nil, postgres.NotFound(err, ErrNotFound)
	}
	return p, nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false, postgres.Classify(err)
	}
	return cmd.RowsAffected() > 0, nil
}

// GetForUpdate reads the product and holds a row lock on it until the
// surrounding transaction ends. It returns nil, nil when no row matches.
func GetForUpdate(ctx context.Context, q postgres.Querier, id string) (*Product, error) {
	p, err := scan(q.QueryRow(ctx, `SELECT `+columns+` FROM products WHERE id=$1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// AdjustStock adds delta (which may be negative) to quantity_in_stock. The
// table CHECK rejects results below zero.
func AdjustStock(ctx context.Context, q postgres.Querier, id string, delta int) error {
	tag, err := q.Exec(ctx, `
		UPDATE products
		SET quantity_in_stock = quantity_in_stock + $2, updated_at = NOW()
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
