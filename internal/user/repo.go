package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/ecommerce-api/internal/apperr"
	"github.com/MikeMC777/ecommerce-api/internal/postgres"
)

var (
	ErrNotFound     = apperr.NotFound("User")
	ErrAlreadyExist = apperr.Invalid("Email already taken")
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, q Query) ([]User, int, error)
	Update(ctx context.Context, u *User, updatePassword bool) error
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const columns = `id, name, email, password_hash, role, created_at, updated_at`

func scan(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PGRepo) Create(ctx context.Context, u *User) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,NOW(),NOW())
		RETURNING created_at, updated_at
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.Role).Scan(&u.CreatedAt, &u.UpdatedAt)
	if isUnique(err) {
		return ErrAlreadyExist
	}
	return postgres.Classify(err)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	u, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM users WHERE id=$1`, id))
	if err != nil {
		return nil, postgres.NotFound(err, ErrNotFound)
	}
	return u, nil
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	u, err := scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM users WHERE email=$1`, email))
	if err != nil {
		return nil, postgres.NotFound(err, ErrNotFound)
	}
	return u, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]User, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var total int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM users WHERE ($1 = '' OR role ILIKE '%'||$1||'%')
	`, q.Role).Scan(&total); err != nil {
		return nil, 0, postgres.Classify(err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+columns+`
		FROM users
		WHERE ($1 = '' OR role ILIKE '%'||$1||'%')
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`, q.Role, q.Limit, q.Offset)
	if err != nil {
		return nil, 0, postgres.Classify(err)
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scan(rows)
		if err != nil {
			return nil, 0, postgres.Classify(err)
		}
		out = append(out, *u)
	}
	return out, total, postgres.Classify(rows.Err())
}

func (r *PGRepo) Update(ctx context.Context, u *User, updatePassword bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		tag pgconn.CommandTag
		err error
	)
	if updatePassword {
		tag, err = r.db.Exec(ctx, `
			UPDATE users
			SET name  = COALESCE(NULLIF($2, ''), name),
			    email = COALESCE(NULLIF($3, ''), email),
			    role  = COALESCE(NULLIF($4, ''), role),
			    password_hash = $5,
			    updated_at = NOW()
			WHERE id = $1
		`, u.ID, u.Name, u.Email, u.Role, u.PasswordHash)
	} else {
		tag, err = r.db.Exec(ctx, `
			UPDATE users
			SET name  = COALESCE(NULLIF($2, ''), name),
			    email = COALESCE(NULLIF($3, ''), email),
			    role  = COALESCE(NULLIF($4, ''), role),
			    updated_at = NOW()
			WHERE id = $1
		`, u.ID, u.Name, u.Email, u.Role)
	}
	if err != nil {
		if isUnique(err) {
			return ErrAlreadyExist
		}
		return postgres.Classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return false, postgres.Classify(err)
	}
	return cmd.RowsAffected() > 0, nil
}

func isUnique(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
