// Package service implements the sync engine on top of the store
// repositories: the change ledger, the changeset builder, the conflict
// resolver, and the sync orchestrator that drives incremental and full
// synchronisation against a remote gateway.
package service

import (
	"context"
	"time"

	"github.com/flashdeck/flashdeck/models"
)

// LedgerService records local entity mutations: it applies the entity
// writes and appends the matching ledger entries atomically, assigning
// USNs. This is the only write path that advances a user's USN counter.
type LedgerService interface {
	// RecordChanges applies every record of the changeset to the entity
	// store and appends one ledger entry per record, all inside a single
	// transaction. Per-record USNs in the input are ignored; fresh USNs
	// are assigned in apply order. Returns the user's USN after the last
	// appended entry.
	RecordChanges(ctx context.Context, userID int64, changes models.Changeset) (int64, error)

	// LocalUSN returns the user's current highest USN.
	LocalUSN(ctx context.Context, userID int64) (int64, error)
}

// ChangesetService builds outbound changesets and snapshots from the
// ledger and current entity state.
type ChangesetService interface {
	// ChangesSince returns everything that changed past sinceUSN. Entity
	// payloads reflect current store state, never historical versions;
	// an entity touched several times inside the window appears once,
	// carrying the metadata of its latest ledger entry. Entities whose
	// latest entry is a delete travel as DeletedRefs.
	ChangesSince(ctx context.Context, userID, sinceUSN int64) (models.Changeset, error)

	// Snapshot returns every syncable row the user owns, parents-first.
	Snapshot(ctx context.Context, userID int64) (models.Collection, error)
}

// ConflictResolver decides the winning side for an entity both replicas
// modified since the last agreed watermark.
type ConflictResolver interface {
	// Resolve is deterministic: the same inputs always produce the same
	// winner, on every device.
	Resolve(local, remote models.RecordMeta) models.Resolution
}

// SyncService orchestrates sync sessions against the remote gateway.
type SyncService interface {
	// Status reports the user's watermark, current local USN, and
	// whether the next sync must be a full one.
	Status(ctx context.Context, userID int64) (models.SyncStatus, error)

	// NeedsFullSync reports whether incremental sync can no longer
	// reconcile this user: schema version drift or a truncated ledger.
	NeedsFullSync(ctx context.Context, userID int64) (bool, error)

	// IncrementalSync exchanges changes past the stored watermarks with
	// the remote, resolves conflicts, and advances the watermark.
	// Returns ErrSyncInProgress when another sync holds the lease and
	// ErrFullSyncRequired when the replicas have diverged beyond
	// incremental repair.
	IncrementalSync(ctx context.Context, userID int64) (models.SyncResult, error)

	// ApplyRemoteChanges merges a changeset that arrived outside a sync
	// session, resolving conflicts against unsynced local edits. Applied
	// records do not re-enter the change ledger.
	ApplyRemoteChanges(ctx context.Context, userID int64, changes models.Changeset) (models.SyncResult, error)

	// FullSync transfers complete state in the given direction: upload
	// replaces the remote with local state, download replaces local
	// state (entities, ledger, and watermark) with the remote's.
	FullSync(ctx context.Context, userID int64, direction models.SyncDirection) (models.SyncResult, error)
}

// RemoteSyncService is the server role of the engine: the operations a
// peer invokes through the remote endpoints or the local gateway. It
// mirrors the gateway surface from the serving side.
type RemoteSyncService interface {
	ChangesSince(ctx context.Context, userID, sinceUSN int64) (models.Changeset, error)
	RecordChanges(ctx context.Context, userID int64, changes models.Changeset) (int64, error)
	Snapshot(ctx context.Context, userID int64) (models.Collection, int64, error)
	ReplaceSnapshot(ctx context.Context, userID int64, snapshot models.Collection) (int64, error)
}

// SyncJob runs incremental syncs for one user on a fixed interval.
type SyncJob interface {
	Start(ctx context.Context, userID int64, interval time.Duration)
	Stop()
}
