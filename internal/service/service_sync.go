package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/flashdeck/flashdeck/internal/adapter"
	"github.com/flashdeck/flashdeck/internal/logger"
	"github.com/flashdeck/flashdeck/internal/store"
	"github.com/flashdeck/flashdeck/models"
)

type syncService struct {
	storages *store.Storages
	changes  ChangesetService
	ledger   LedgerService
	resolver ConflictResolver
	gateway  adapter.RemoteGateway

	leaseTTL time.Duration
	logger   *logger.Logger
}

func NewSyncService(storages *store.Storages, changes ChangesetService, ledger LedgerService, resolver ConflictResolver, gateway adapter.RemoteGateway, leaseTTL time.Duration, log *logger.Logger) SyncService {
	if leaseTTL <= 0 {
		leaseTTL = 5 * time.Minute
	}

	return &syncService{
		storages: storages,
		changes:  changes,
		ledger:   ledger,
		resolver: resolver,
		gateway:  gateway,
		leaseTTL: leaseTTL,
		logger:   log,
	}
}

// Status implements [SyncService].
func (s *syncService) Status(ctx context.Context, userID int64) (models.SyncStatus, error) {
	meta, err := s.storages.SyncMeta.GetOrCreate(ctx, userID)
	if err != nil {
		return models.SyncStatus{}, fmt.Errorf("load sync meta: %w", err)
	}

	localUSN, err := s.ledger.LocalUSN(ctx, userID)
	if err != nil {
		return models.SyncStatus{}, fmt.Errorf("read local usn: %w", err)
	}

	return models.SyncStatus{
		Meta:     meta,
		LocalUSN: localUSN,
		NeedFull: needsFull(meta, localUSN),
	}, nil
}

// NeedsFullSync implements [SyncService].
func (s *syncService) NeedsFullSync(ctx context.Context, userID int64) (bool, error) {
	status, err := s.Status(ctx, userID)
	if err != nil {
		return false, err
	}
	return status.NeedFull, nil
}

// needsFull is the local divergence check: the user has never synced (nil
// LastSyncAt on a freshly created watermark), the schema moved under the
// watermark, or the watermark points past the ledger (a truncated or
// restored local database). Remote-side divergence is detected during
// incremental sync itself, when the fetched changeset's USN falls behind
// the stored remote watermark.
func needsFull(meta models.SyncMeta, localUSN int64) bool {
	if meta.LastSyncAt == nil {
		return true
	}
	if meta.SchemaVersion != models.CurrentSchemaVersion {
		return true
	}
	return meta.LastSyncedUSN > localUSN
}

// IncrementalSync implements [SyncService]. One session: take the lease,
// build the local changeset past the local watermark, fetch the remote one
// past the remote watermark, resolve conflicts on entities present in
// both, apply the surviving remote records in one transaction, push the
// surviving local records, then advance both watermarks.
func (s *syncService) IncrementalSync(ctx context.Context, userID int64) (result models.SyncResult, err error) {
	log := logger.FromContext(ctx)

	meta, err := s.storages.SyncMeta.GetOrCreate(ctx, userID)
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("load sync meta: %w", err)
	}

	localUSN, err := s.ledger.LocalUSN(ctx, userID)
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("read local usn: %w", err)
	}
	if needsFull(meta, localUSN) {
		return models.SyncResult{NewUSN: meta.LastSyncedUSN}, ErrFullSyncRequired
	}

	acquired, err := s.storages.SyncMeta.AcquireLease(ctx, userID, time.Now(), s.leaseTTL)
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("acquire sync lease: %w", err)
	}
	if !acquired {
		return models.SyncResult{NewUSN: meta.LastSyncedUSN}, ErrSyncInProgress
	}
	defer s.releaseLease(ctx, userID)

	localChanges, err := s.changes.ChangesSince(ctx, userID, meta.LastSyncedUSN)
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("build local changeset: %w", err)
	}

	remoteChanges, err := s.gateway.FetchChanges(ctx, userID, meta.ServerUSN)
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("fetch remote changes: %w", err)
	}
	if remoteChanges.USN < meta.ServerUSN {
		// The remote's counter moved backwards: it was replaced or reset
		// since our last session.
		return models.SyncResult{NewUSN: meta.LastSyncedUSN}, ErrFullSyncRequired
	}

	conflicts, dropLocal, dropRemote := s.resolveConflicts(localChanges, remoteChanges)

	deleteConflicts, keepDeleted, err := s.resolveDeletions(ctx, userID, meta.LastSyncedUSN, remoteChanges)
	if err != nil {
		return models.SyncResult{}, err
	}
	for key := range keepDeleted {
		dropRemote[key] = struct{}{}
	}
	conflicts = sortConflicts(append(conflicts, deleteConflicts...))

	applied := filterChangeset(remoteChanges, dropRemote)
	if !applied.Empty() {
		err = s.storages.WithinTransaction(ctx, func(ctx context.Context) error {
			return applyChangeset(ctx, s.storages, userID, applied)
		})
		if err != nil {
			return models.SyncResult{}, fmt.Errorf("apply remote changes: %w", err)
		}
	}

	pushed := filterChangeset(localChanges, dropLocal)
	serverUSN := remoteChanges.USN
	if !pushed.Empty() {
		returnedUSN, pushErr := s.gateway.PushChanges(ctx, userID, pushed)
		if pushErr != nil {
			return models.SyncResult{}, fmt.Errorf("push local changes: %w", pushErr)
		}

		// Another device pushing between our fetch and our push advances
		// the remote counter past our own entries. Capping the watermark
		// at our expected position keeps the foreign entries inside the
		// next pull window instead of silently skipping them.
		serverUSN = remoteChanges.USN + int64(pushed.RecordCount())
		if returnedUSN < serverUSN {
			serverUSN = returnedUSN
		}
	}

	if err = s.advanceWatermark(ctx, meta, localChanges.USN, serverUSN); err != nil {
		return models.SyncResult{}, err
	}

	log.Info().
		Str("func", "syncService.IncrementalSync").
		Int64("user_id", userID).
		Int("sent", pushed.RecordCount()).
		Int("received", applied.RecordCount()).
		Int("conflicts", len(conflicts)).
		Int64("server_usn", serverUSN).
		Msg("incremental sync finished")

	return models.SyncResult{
		Success:         true,
		SentChanges:     pushed.RecordCount(),
		ReceivedChanges: applied.RecordCount(),
		Conflicts:       conflicts,
		NewUSN:          serverUSN,
	}, nil
}

// ApplyRemoteChanges implements [SyncService]. Unlike a full incremental
// session it takes no lease and pushes nothing back: the caller already
// holds the changeset and only wants it merged in. Conflicts are judged
// against the local ledger tail past the watermark, the same window an
// incremental session would contest.
func (s *syncService) ApplyRemoteChanges(ctx context.Context, userID int64, changes models.Changeset) (models.SyncResult, error) {
	meta, err := s.storages.SyncMeta.GetOrCreate(ctx, userID)
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("load sync meta: %w", err)
	}

	localChanges, err := s.changes.ChangesSince(ctx, userID, meta.LastSyncedUSN)
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("build local changeset: %w", err)
	}

	conflicts, _, dropRemote := s.resolveConflicts(localChanges, changes)

	deleteConflicts, keepDeleted, err := s.resolveDeletions(ctx, userID, meta.LastSyncedUSN, changes)
	if err != nil {
		return models.SyncResult{}, err
	}
	for key := range keepDeleted {
		dropRemote[key] = struct{}{}
	}
	conflicts = sortConflicts(append(conflicts, deleteConflicts...))

	applied := filterChangeset(changes, dropRemote)
	if !applied.Empty() {
		err = s.storages.WithinTransaction(ctx, func(ctx context.Context) error {
			return applyChangeset(ctx, s.storages, userID, applied)
		})
		if err != nil {
			return models.SyncResult{}, fmt.Errorf("apply remote changes: %w", err)
		}
	}

	localUSN, err := s.ledger.LocalUSN(ctx, userID)
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("read local usn: %w", err)
	}

	return models.SyncResult{
		Success:         true,
		ReceivedChanges: applied.RecordCount(),
		Conflicts:       conflicts,
		NewUSN:          localUSN,
	}, nil
}

// FullSync implements [SyncService].
func (s *syncService) FullSync(ctx context.Context, userID int64, direction models.SyncDirection) (models.SyncResult, error) {
	if direction != models.SyncUpload && direction != models.SyncDownload {
		return models.SyncResult{}, fmt.Errorf("%w: %q", ErrInvalidSyncDirection, direction)
	}

	meta, err := s.storages.SyncMeta.GetOrCreate(ctx, userID)
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("load sync meta: %w", err)
	}

	acquired, err := s.storages.SyncMeta.AcquireLease(ctx, userID, time.Now(), s.leaseTTL)
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("acquire sync lease: %w", err)
	}
	if !acquired {
		return models.SyncResult{NewUSN: meta.LastSyncedUSN}, ErrSyncInProgress
	}
	defer s.releaseLease(ctx, userID)

	if direction == models.SyncUpload {
		return s.fullUpload(ctx, userID, meta)
	}
	return s.fullDownload(ctx, userID, meta)
}

// fullUpload replaces the remote's state with the local snapshot. Remote
// USNs restart, which makes every other device detect the reset and pull a
// fresh full download.
func (s *syncService) fullUpload(ctx context.Context, userID int64, meta models.SyncMeta) (models.SyncResult, error) {
	snapshot, err := s.changes.Snapshot(ctx, userID)
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("build local snapshot: %w", err)
	}

	serverUSN, err := s.gateway.PushSnapshot(ctx, userID, snapshot)
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("push snapshot: %w", err)
	}

	localUSN, err := s.ledger.LocalUSN(ctx, userID)
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("read local usn: %w", err)
	}

	if err = s.advanceWatermark(ctx, meta, localUSN, serverUSN); err != nil {
		return models.SyncResult{}, err
	}

	return models.SyncResult{Success: true, SentChanges: snapshot.Size(), NewUSN: serverUSN}, nil
}

// fullDownload replaces local state with the remote snapshot: entities and
// ledger are wiped in one transaction, the snapshot installed, and the
// local watermark rewound to zero since local history restarts.
func (s *syncService) fullDownload(ctx context.Context, userID int64, meta models.SyncMeta) (models.SyncResult, error) {
	snapshot, serverUSN, err := s.gateway.FetchSnapshot(ctx, userID)
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("fetch snapshot: %w", err)
	}

	err = s.storages.WithinTransaction(ctx, func(ctx context.Context) error {
		if txErr := wipeUserData(ctx, s.storages, userID, true); txErr != nil {
			return txErr
		}
		return installCollection(ctx, s.storages, userID, snapshot)
	})
	if err != nil {
		return models.SyncResult{}, fmt.Errorf("install snapshot: %w", err)
	}

	if err = s.advanceWatermark(ctx, meta, 0, serverUSN); err != nil {
		return models.SyncResult{}, err
	}

	return models.SyncResult{Success: true, ReceivedChanges: snapshot.Size(), NewUSN: serverUSN}, nil
}

func (s *syncService) advanceWatermark(ctx context.Context, meta models.SyncMeta, localUSN, serverUSN int64) error {
	now := time.Now()
	meta.LastSyncedUSN = localUSN
	meta.ServerUSN = serverUSN
	meta.LastSyncAt = &now
	meta.SchemaVersion = models.CurrentSchemaVersion

	if err := s.storages.SyncMeta.UpdateWatermark(ctx, meta); err != nil {
		return fmt.Errorf("advance watermark: %w", err)
	}
	return nil
}

// releaseLease clears the in-progress flag on every exit path. Release
// must never be skipped, so failures are logged rather than returned; an
// unreleased lease would still expire via the TTL.
func (s *syncService) releaseLease(ctx context.Context, userID int64) {
	if err := s.storages.SyncMeta.ReleaseLease(ctx, userID); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "syncService.releaseLease").
			Int64("user_id", userID).
			Msg("failed to release sync lease")
	}
}

// resolveConflicts pairs up entities present in both changesets and asks
// the resolver for a winner. The losing side's record is dropped: a remote
// loss is never applied locally, a local loss is never pushed (the next
// pull overwrites it). Remote deletions are judged separately by
// resolveDeletions against the local ledger.
func (s *syncService) resolveConflicts(local, remote models.Changeset) ([]models.Conflict, map[entityKey]struct{}, map[entityKey]struct{}) {
	localMetas := changesetMetas(local)
	remoteMetas := changesetMetas(remote)

	var conflicts []models.Conflict
	dropLocal := make(map[entityKey]struct{})
	dropRemote := make(map[entityKey]struct{})

	for key, localMeta := range localMetas {
		remoteMeta, contested := remoteMetas[key]
		if !contested {
			continue
		}

		resolution := s.resolver.Resolve(localMeta, remoteMeta)
		if resolution == models.LocalWins {
			dropRemote[key] = struct{}{}
		} else {
			dropLocal[key] = struct{}{}
		}

		conflicts = append(conflicts, models.Conflict{
			EntityType:     key.Type,
			EntityID:       key.ID,
			Resolution:     resolution,
			LocalModified:  localMeta.ModifiedAt,
			RemoteModified: remoteMeta.ModifiedAt,
		})
	}

	return conflicts, dropLocal, dropRemote
}

// resolveDeletions judges every remote deletion against the local ledger:
// an entity the user modified after the last sync point survives a remote
// delete. The deletion is dropped from the applied set and a local-wins
// conflict recorded, so the surviving row is pushed back on the next
// session instead of silently resurrecting.
func (s *syncService) resolveDeletions(ctx context.Context, userID, lastSyncedUSN int64, remote models.Changeset) ([]models.Conflict, map[entityKey]struct{}, error) {
	var conflicts []models.Conflict
	keep := make(map[entityKey]struct{})

	for _, ref := range remote.DeletedIDs {
		entry, found, err := s.storages.Ledger.LatestEntryFor(ctx, userID, ref.EntityType, ref.EntityID)
		if err != nil {
			return nil, nil, fmt.Errorf("judge deletion of %s %s: %w", ref.EntityType, ref.EntityID, err)
		}
		if !found || entry.ChangeType == models.ChangeDelete || entry.USN <= lastSyncedUSN {
			continue
		}

		keep[entityKey{Type: ref.EntityType, ID: ref.EntityID}] = struct{}{}
		conflicts = append(conflicts, models.Conflict{
			EntityType:    ref.EntityType,
			EntityID:      ref.EntityID,
			Resolution:    models.LocalWins,
			LocalModified: entry.ModifiedAt,
		})
	}

	return conflicts, keep, nil
}

func sortConflicts(conflicts []models.Conflict) []models.Conflict {
	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].EntityType != conflicts[j].EntityType {
			return entityApplyOrder[conflicts[i].EntityType] < entityApplyOrder[conflicts[j].EntityType]
		}
		return conflicts[i].EntityID < conflicts[j].EntityID
	})
	return conflicts
}
