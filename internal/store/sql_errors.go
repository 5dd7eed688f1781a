package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorClassification indicates whether a failed database operation may
// succeed when attempted again.
type ErrorClassification int

const (
	// NonRetryable is the default classification: constraint violations,
	// data exceptions, syntax errors, and anything unrecognised.
	NonRetryable ErrorClassification = iota

	// Retryable covers transient failures such as lost connections,
	// serialization failures, and deadlock rollbacks.
	Retryable
)

// ErrorClassificator maps driver errors to an [ErrorClassification].
// The engine does not retry internally; the classification is surfaced in
// logs so that callers (the offline queue, the transport layer) can decide.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// PostgresErrorClassifier implements [ErrorClassificator] by inspecting the
// pgconn error code returned by the pgx driver.
type PostgresErrorClassifier struct{}

func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

// Classify unwraps err as a *pgconn.PgError and maps its code. Nil and
// non-PostgreSQL errors are NonRetryable.
//
// Retryable codes: class 08 (connection exceptions), class 40 (transaction
// rollback, serialization failure, deadlock), 57P03 (cannot connect now).
// Everything else, including classes 22/23/42, is NonRetryable.
func (c *PostgresErrorClassifier) Classify(err error) ErrorClassification {
	if err == nil {
		return NonRetryable
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return NonRetryable
	}

	switch pgErr.Code {
	case pgerrcode.ConnectionException,
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure,
		pgerrcode.TransactionRollback,
		pgerrcode.SerializationFailure,
		pgerrcode.DeadlockDetected,
		pgerrcode.CannotConnectNow:
		return Retryable
	}

	return NonRetryable
}

// NopErrorClassifier implements [ErrorClassificator] for backends without
// structured error codes (SQLite): every error is NonRetryable.
type NopErrorClassifier struct{}

func NewNopErrorClassifier() *NopErrorClassifier {
	return &NopErrorClassifier{}
}

func (c *NopErrorClassifier) Classify(err error) ErrorClassification {
	return NonRetryable
}
