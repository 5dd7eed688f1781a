package store

import (
	"context"
	"time"

	"github.com/flashdeck/flashdeck/models"
)

// LedgerRepository persists the append-only per-user change ledger.
type LedgerRepository interface {
	// Append writes one ledger entry carrying the next USN for the user,
	// computed atomically inside the insert, and returns the stored entry.
	Append(ctx context.Context, userID int64, entityType models.EntityType, entityID string, changeType models.ChangeType, modifiedAt time.Time) (models.LedgerEntry, error)

	// MaxUSN returns the highest USN recorded for the user, or 0 when the
	// ledger is empty.
	MaxUSN(ctx context.Context, userID int64) (int64, error)

	// EntriesSince returns all entries with usn > sinceUSN in ascending
	// USN order.
	EntriesSince(ctx context.Context, userID, sinceUSN int64) ([]models.LedgerEntry, error)

	// LatestEntryFor returns the most recent entry for one entity, with
	// found=false when the entity never appeared in the ledger.
	LatestEntryFor(ctx context.Context, userID int64, entityType models.EntityType, entityID string) (models.LedgerEntry, bool, error)

	// DeleteAllForUser clears the user's ledger. Used only by a full
	// download reset.
	DeleteAllForUser(ctx context.Context, userID int64) error
}

// SyncMetaRepository persists the per-user sync watermark and in-progress
// lease.
type SyncMetaRepository interface {
	// GetOrCreate returns the user's watermark row, lazily creating it
	// with zero watermarks and the current schema version.
	GetOrCreate(ctx context.Context, userID int64) (models.SyncMeta, error)

	// AcquireLease atomically takes the in-progress lease. It succeeds
	// when no sync is running or when a previous lease is older than
	// expiry (abandoned by a crashed process). Returns false when another
	// sync holds a live lease.
	AcquireLease(ctx context.Context, userID int64, now time.Time, expiry time.Duration) (bool, error)

	// ReleaseLease unconditionally clears the in-progress lease.
	// Idempotent.
	ReleaseLease(ctx context.Context, userID int64) error

	// UpdateWatermark stores the watermark fields of meta
	// (LastSyncedUSN, ServerUSN, LastSyncAt, SchemaVersion) without
	// touching the lease columns.
	UpdateWatermark(ctx context.Context, meta models.SyncMeta) error
}

// EntityRepository is the per-type entity store contract the sync engine
// consumes: id-keyed upserts and deletes plus the two batch reads the
// changeset builder and full sync need.
type EntityRepository[T models.Syncable] interface {
	Upsert(ctx context.Context, entity T) error
	SelectByIDs(ctx context.Context, userID int64, ids []string) ([]T, error)
	SelectAllByUser(ctx context.Context, userID int64) ([]T, error)
	DeleteByID(ctx context.Context, userID int64, id string) error
	DeleteAllByUser(ctx context.Context, userID int64) error
}

// TransactionRunner scopes a function to one atomic database transaction.
type TransactionRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
