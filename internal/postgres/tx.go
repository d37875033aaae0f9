package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/ecommerce-api/internal/apperr"
)

// SQLSTATE codes the application reacts to.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeInvalidText          = "22P02"
)

// InTx runs fn inside a SERIALIZABLE transaction. The transaction is committed
// only when fn returns nil; any error, panic or cancelled ctx rolls it back.
// Returned errors are classified with Classify.
func InTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return Classify(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return Classify(err)
	}
	return Classify(tx.Commit(ctx))
}

// Classify turns driver errors into apperr kinds. Errors that already carry a
// kind pass through untouched.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return apperr.Conflict("concurrent update, retry the request", err)
		case codeQueryCanceled:
			return apperr.Timeout(err)
		case codeUniqueViolation:
			return apperr.Conflict("record already exists", err)
		case codeForeignKeyViolation:
			return &apperr.Error{Kind: apperr.KindInvalid, Msg: "referenced record does not exist", Err: err}
		case codeCheckViolation:
			return &apperr.Error{Kind: apperr.KindInvalid, Msg: "constraint violated", Err: err}
		case codeInvalidText:
			return &apperr.Error{Kind: apperr.KindInvalid, Msg: "malformed value", Err: err}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return apperr.Timeout(err)
	}
	return apperr.Internal(err)
}

// NotFound maps pgx.ErrNoRows to notFound and classifies everything else.
func NotFound(err, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return Classify(err)
}
