package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known
// failure conditions. Callers should use [errors.Is] to match against them.
var (
	// ErrEntityNotFound is returned when a query targets an entity row
	// (identified by id and user_id) that does not exist.
	ErrEntityNotFound = errors.New("entity was not found")

	// ErrSyncMetaNotFound is returned when a watermark row that should
	// have been created lazily cannot be read back.
	ErrSyncMetaNotFound = errors.New("sync meta was not found")

	// ErrLedgerEntryNotSaved is returned when a ledger append completes
	// without a database error but produces no row.
	ErrLedgerEntryNotSaved = errors.New("ledger entry was not saved")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain
// logic can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised
	// SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a read-only query
	// against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when a result row cannot be scanned into
	// its destination fields.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when an iteration error is detected
	// after a result set is exhausted.
	ErrScanningRows = errors.New("error occurred during rows iteration")

	// ErrBeginningTransaction is returned when the driver cannot start a
	// new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommittingTransaction is returned when committing an open
	// transaction fails. The transaction is considered rolled back.
	ErrCommittingTransaction = errors.New("failed to commit transaction")

	// ErrRollingBackTransaction is returned when rolling back a failed
	// transaction itself fails.
	ErrRollingBackTransaction = errors.New("failed to roll back transaction")
)
