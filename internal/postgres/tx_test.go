package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MikeMC777/ecommerce-api/internal/apperr"
)

func TestClassifyPgCodes(t *testing.T) {
	cases := map[string]apperr.Kind{
		"40001": apperr.KindConflict,
		"40P01": apperr.KindConflict,
		"55P03": apperr.KindConflict,
		"57014": apperr.KindTimeout,
		"23505": apperr.KindConflict,
		"23503": apperr.KindInvalid,
		"23514": apperr.KindInvalid,
		"42P01": apperr.KindInternal,
	}
	for code, want := range cases {
		err := fmt.Errorf("exec: %w", &pgconn.PgError{Code: code, Message: "x"})
		if got := apperr.KindOf(Classify(err)); got != want {
			t.Fatalf("code %s: kind=%s want %s", code, got, want)
		}
	}
}

func TestClassifyKeepsAppErrors(t *testing.T) {
	in := apperr.Invalid("price mismatch")
	if out := Classify(in); out != error(in) {
		t.Fatalf("apperr values must pass through, got %v", out)
	}
}

func TestClassifyDeadline(t *testing.T) {
	err := Classify(fmt.Errorf("query: %w", context.DeadlineExceeded))
	if !apperr.Is(err, apperr.KindTimeout) || !apperr.Retryable(err) {
		t.Fatalf("deadline must be a retryable timeout, got %v", err)
	}
}

func TestNotFound(t *testing.T) {
	sentinel := apperr.NotFound("Order")
	if err := NotFound(pgx.ErrNoRows, sentinel); !errors.Is(err, sentinel) {
		t.Fatalf("want sentinel, got %v", err)
	}
	if err := NotFound(errors.New("conn reset"), sentinel); !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("want internal, got %v", err)
	}
	if Classify(nil) != nil {
		t.Fatalf("nil stays nil")
	}
}
