package category

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/ecommerce-api/internal/apperr"
	"github.com/MikeMC777/ecommerce-api/internal/postgres"
)

var ErrNotFound = apperr.NotFound("Category")

type Repository interface {
	Create(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context, q Query) ([]Category, int, error)
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func scan(row pgx.Row) (*Category, error) {
	var c Category
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PGRepo) Create(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO categories (id, name, created_at, updated_at)
		VALUES ($1,$2,NOW(),NOW())
		RETURNING created_at, updated_at
	`, c.ID, c.Name).Scan(&c.CreatedAt, &c.UpdatedAt)
	return postgres.Classify(err)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c, err := scan(r.db.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at FROM categories WHERE id=$1
	`, id))
	if err != nil {
		return nil, postgres.NotFound(err, ErrNotFound)
	}
	return c, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Category, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var total int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM categories WHERE ($1 = '' OR name ILIKE '%'||$1||'%')
	`, q.Name).Scan(&total); err != nil {
		return nil, 0, postgres.Classify(err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, name, created_at, updated_at
		FROM categories
		WHERE ($1 = '' OR name ILIKE '%'||$1||'%')
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`, q.Name, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, postgres.Classify(err)
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, 0, postgres.Classify(err)
		}
		out = append(out, *c)
	}
	return out, total, postgres.Classify(rows.Err())
}

func (r *PGRepo) Update(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE categories SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, c.ID, c.Name).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return postgres.NotFound(err, ErrNotFound)
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return false, postgres.Classify(err)
	}
	return cmd.RowsAffected() > 0, nil
}
