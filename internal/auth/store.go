package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/ecommerce-api/internal/postgres"
)

// Token is a persisted refresh token.
type Token struct {
	ID          string
	Token       string
	UserID      string
	Type        string
	Expires     time.Time
	Blacklisted bool
}

type TokenStore interface {
	Create(ctx context.Context, t *Token) error
	// FindValid returns nil, nil when no non-blacklisted token matches.
	FindValid(ctx context.Context, token, userID, typ string) (*Token, error)
	Delete(ctx context.Context, id string) error
	BlacklistByUser(ctx context.Context, userID string) error
}

type PGTokenStore struct{ db *pgxpool.Pool }

func NewPGTokenStore(db *pgxpool.Pool) *PGTokenStore { return &PGTokenStore{db: db} }

func (s *PGTokenStore) Create(ctx context.Context, t *Token) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.db.Exec(ctx, `
		INSERT INTO tokens (id, token, user_id, type, expires, blacklisted, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
	`, t.ID, t.Token, t.UserID, t.Type, t.Expires, t.Blacklisted)
	return postgres.Classify(err)
}

func (s *PGTokenStore) FindValid(ctx context.Context, token, userID, typ string) (*Token, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var t Token
	err := s.db.QueryRow(ctx, `
		SELECT id, token, user_id, type, expires, blacklisted
		FROM tokens
		WHERE token=$1 AND user_id=$2 AND type=$3 AND blacklisted = FALSE
		LIMIT 1
	`, token, userID, typ).Scan(&t.ID, &t.Token, &t.UserID, &t.Type, &t.Expires, &t.Blacklisted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, postgres.Classify(err)
	}
	return &t, nil
}

func (s *PGTokenStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.db.Exec(ctx, `DELETE FROM tokens WHERE id=$1`, id)
	return postgres.Classify(err)
}

func (s *PGTokenStore) BlacklistByUser(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.db.Exec(ctx, `UPDATE tokens SET blacklisted = TRUE WHERE user_id=$1`, userID)
	return postgres.Classify(err)
}
