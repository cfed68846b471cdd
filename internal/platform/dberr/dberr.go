// Copyright (c) 2026 Hakoba. All rights reserved.
// Author: a.yazaki.dev@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// It classifies Postgres SQLSTATEs into the application's error taxonomy:
// unique violations become CONFLICT (two writers raced on the same row),
// check violations become INVARIANT_VIOLATION (a derived-state guard such as
// a tag count dropping below zero fired), and serialization failures are
// flagged retryable so stores can transparently re-run the transaction.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ayazaki/hakoba/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the
// error type. The action string names the failed operation for server logs.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. SQLSTATE classification
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperr.Conflict("Resource already exists")

		case pgerrcode.CheckViolation:
			// A CHECK constraint is a last-line invariant guard. Tripping one
			// means derived state (e.g. a tag reference count) was about to
			// diverge from its source of truth.
			return apperr.Invariant("Storage invariant violated: "+pgErr.ConstraintName, err)

		case pgerrcode.ForeignKeyViolation:
			return apperr.ValidationError("Referenced resource does not exist")

		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			// Keep the driver error in the chain: IsRetryable looks for the
			// SQLSTATE through Unwrap, and the transaction runner must still
			// see these as transient after wrapping.
			conflict := apperr.Conflict("Concurrent modification, retry")
			conflict.Cause = err
			return conflict
		}
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(&actionError{action: action, cause: err})
}

// IsRetryable reports whether err is a transient failure worth re-running the
// enclosing transaction for (serialization failures and deadlocks only —
// version conflicts must surface to the caller, who holds stale state).
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure ||
			pgErr.Code == pgerrcode.DeadlockDetected
	}
	return false
}

// actionError annotates a raw database error with the failed operation name
// so server-side logs can attribute it without string concatenation at
// every call site.
type actionError struct {
	action string
	cause  error
}

func (e *actionError) Error() string { return e.action + ": " + e.cause.Error() }
func (e *actionError) Unwrap() error { return e.cause }
