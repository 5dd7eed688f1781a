package service

import (
	"context"
	"fmt"

	"github.com/flashdeck/flashdeck/internal/logger"
	"github.com/flashdeck/flashdeck/internal/store"
	"github.com/flashdeck/flashdeck/internal/validators"
	"github.com/flashdeck/flashdeck/models"
)

// remoteSyncService serves the other end of a sync session: it answers
// pulls from the ledger, records pushes through the ledger service (so
// pushed changes gain USNs and become pullable by other devices), and
// handles snapshot exchange for full syncs.
type remoteSyncService struct {
	storages  *store.Storages
	changes   ChangesetService
	ledger    LedgerService
	validator validators.Validator
	logger    *logger.Logger
}

func NewRemoteSyncService(storages *store.Storages, changes ChangesetService, ledger LedgerService, log *logger.Logger) RemoteSyncService {
	return &remoteSyncService{
		storages:  storages,
		changes:   changes,
		ledger:    ledger,
		validator: validators.NewChangesetValidator(),
		logger:    log,
	}
}

// ChangesSince implements [RemoteSyncService]. The returned changeset's
// USN is always the serving side's current ledger USN, even when nothing
// changed, so a caller can detect a reset counter (USN below its stored
// watermark).
func (r *remoteSyncService) ChangesSince(ctx context.Context, userID, sinceUSN int64) (models.Changeset, error) {
	changes, err := r.changes.ChangesSince(ctx, userID, sinceUSN)
	if err != nil {
		return models.Changeset{}, err
	}

	currentUSN, err := r.ledger.LocalUSN(ctx, userID)
	if err != nil {
		return models.Changeset{}, fmt.Errorf("read current usn: %w", err)
	}
	changes.USN = currentUSN

	return changes, nil
}

// RecordChanges implements [RemoteSyncService].
func (r *remoteSyncService) RecordChanges(ctx context.Context, userID int64, changes models.Changeset) (int64, error) {
	return r.ledger.RecordChanges(ctx, userID, changes)
}

// Snapshot implements [RemoteSyncService].
func (r *remoteSyncService) Snapshot(ctx context.Context, userID int64) (models.Collection, int64, error) {
	snapshot, err := r.changes.Snapshot(ctx, userID)
	if err != nil {
		return models.Collection{}, 0, err
	}

	currentUSN, err := r.ledger.LocalUSN(ctx, userID)
	if err != nil {
		return models.Collection{}, 0, fmt.Errorf("read current usn: %w", err)
	}

	return snapshot, currentUSN, nil
}

// ReplaceSnapshot implements [RemoteSyncService]. Existing rows and the
// whole ledger are dropped before the snapshot is recorded as creates, so
// the USN counter restarts. Devices holding an older watermark observe the
// restart and fall back to a full download.
func (r *remoteSyncService) ReplaceSnapshot(ctx context.Context, userID int64, snapshot models.Collection) (int64, error) {
	log := logger.FromContext(ctx)

	// validate before wiping anything: a malformed snapshot must not
	// destroy the state other devices still pull from
	if err := r.validator.Validate(ctx, snapshot); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidChangeset, err)
	}

	var newUSN int64
	err := r.storages.WithinTransaction(ctx, func(ctx context.Context) error {
		if txErr := wipeUserData(ctx, r.storages, userID, true); txErr != nil {
			return txErr
		}

		var txErr error
		newUSN, txErr = r.ledger.RecordChanges(ctx, userID, collectionChangeset(snapshot))
		return txErr
	})
	if err != nil {
		return 0, fmt.Errorf("replace snapshot: %w", err)
	}

	log.Info().
		Str("func", "remoteSyncService.ReplaceSnapshot").
		Int64("user_id", userID).
		Int("row_count", snapshot.Size()).
		Int64("usn", newUSN).
		Msg("replaced user state from snapshot")

	return newUSN, nil
}

// collectionChangeset lifts a full snapshot into a changeset of creates.
func collectionChangeset(snapshot models.Collection) models.Changeset {
	return models.Changeset{
		Decks:     toCreateRecords(snapshot.Decks),
		Tags:      toCreateRecords(snapshot.Tags),
		NoteTypes: toCreateRecords(snapshot.NoteTypes),
		Notes:     toCreateRecords(snapshot.Notes),
		Cards:     toCreateRecords(snapshot.Cards),
		MediaRefs: toCreateRecords(snapshot.MediaRefs),
	}
}

func toCreateRecords[T models.Syncable](entities []T) []models.ChangeRecord[T] {
	if len(entities) == 0 {
		return nil
	}

	records := make([]models.ChangeRecord[T], 0, len(entities))
	for _, entity := range entities {
		records = append(records, models.ChangeRecord[T]{Entity: entity, ChangeType: models.ChangeCreate})
	}
	return records
}
