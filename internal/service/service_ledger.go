package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flashdeck/flashdeck/internal/logger"
	"github.com/flashdeck/flashdeck/internal/store"
	"github.com/flashdeck/flashdeck/models"
)

type ledgerService struct {
	storages *store.Storages
	logger   *logger.Logger

	// mu guards userLocks. Each user's lock serializes USN assignment so
	// concurrent RecordChanges calls for one user cannot race the
	// max(usn)+1 computation into a unique constraint violation.
	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
}

func NewLedgerService(storages *store.Storages, log *logger.Logger) LedgerService {
	return &ledgerService{
		storages:  storages,
		logger:    log,
		userLocks: make(map[int64]*sync.Mutex),
	}
}

func (l *ledgerService) userLock(userID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		l.userLocks[userID] = lock
	}
	return lock
}

// RecordChanges implements [LedgerService]. Upserts are applied
// parents-first (decks, tags, note types, notes, cards, media) and deletes
// children-first, so referential order holds at every point inside the
// transaction.
func (l *ledgerService) RecordChanges(ctx context.Context, userID int64, changes models.Changeset) (int64, error) {
	log := logger.FromContext(ctx)

	lock := l.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if changes.Empty() {
		return l.storages.Ledger.MaxUSN(ctx, userID)
	}

	now := time.Now()
	var lastUSN int64

	err := l.storages.WithinTransaction(ctx, func(ctx context.Context) error {
		var txErr error
		if lastUSN, txErr = l.applyAndRecord(ctx, userID, changes, now); txErr != nil {
			return txErr
		}
		if lastUSN == 0 {
			lastUSN, txErr = l.storages.Ledger.MaxUSN(ctx, userID)
		}
		return txErr
	})
	if err != nil {
		log.Err(err).
			Str("func", "ledgerService.RecordChanges").
			Int64("user_id", userID).
			Int("record_count", changes.RecordCount()).
			Msg("failed to record changes")
		return 0, err
	}

	log.Debug().
		Str("func", "ledgerService.RecordChanges").
		Int64("user_id", userID).
		Int("record_count", changes.RecordCount()).
		Int64("usn", lastUSN).
		Msg("recorded changes")

	return lastUSN, nil
}

func (l *ledgerService) applyAndRecord(ctx context.Context, userID int64, changes models.Changeset, now time.Time) (int64, error) {
	var lastUSN int64

	steps := []func() (int64, error){
		func() (int64, error) {
			return recordEntityChanges(ctx, l.storages.Ledger, l.storages.Decks, userID, models.EntityDeck, changes.Decks, now)
		},
		func() (int64, error) {
			return recordEntityChanges(ctx, l.storages.Ledger, l.storages.Tags, userID, models.EntityTag, changes.Tags, now)
		},
		func() (int64, error) {
			return recordEntityChanges(ctx, l.storages.Ledger, l.storages.NoteTypes, userID, models.EntityNoteType, changes.NoteTypes, now)
		},
		func() (int64, error) {
			return recordEntityChanges(ctx, l.storages.Ledger, l.storages.Notes, userID, models.EntityNote, changes.Notes, now)
		},
		func() (int64, error) {
			return recordEntityChanges(ctx, l.storages.Ledger, l.storages.Cards, userID, models.EntityCard, changes.Cards, now)
		},
		func() (int64, error) {
			return recordEntityChanges(ctx, l.storages.Ledger, l.storages.MediaRefs, userID, models.EntityMedia, changes.MediaRefs, now)
		},
		func() (int64, error) {
			return l.recordDeletes(ctx, userID, changes.DeletedIDs, now)
		},
	}

	for _, step := range steps {
		usn, err := step()
		if err != nil {
			return 0, err
		}
		if usn > lastUSN {
			lastUSN = usn
		}
	}

	return lastUSN, nil
}

func (l *ledgerService) recordDeletes(ctx context.Context, userID int64, refs []models.DeletedRef, now time.Time) (int64, error) {
	var lastUSN int64

	for _, ref := range sortRefsChildrenFirst(refs) {
		if err := deleteEntityRef(ctx, l.storages, userID, ref); err != nil {
			return 0, err
		}

		entry, err := l.storages.Ledger.Append(ctx, userID, ref.EntityType, ref.EntityID, models.ChangeDelete, now)
		if err != nil {
			return 0, fmt.Errorf("append delete entry for %s %s: %w", ref.EntityType, ref.EntityID, err)
		}
		lastUSN = entry.USN
	}

	return lastUSN, nil
}

// LocalUSN implements [LedgerService].
func (l *ledgerService) LocalUSN(ctx context.Context, userID int64) (int64, error) {
	return l.storages.Ledger.MaxUSN(ctx, userID)
}

// recordEntityChanges upserts every record of one entity type and appends
// its ledger entry, in input order. Missing change types default to update
// and missing timestamps to now, so callers may submit bare entities.
func recordEntityChanges[T models.Syncable](ctx context.Context, ledger store.LedgerRepository, repo store.EntityRepository[T], userID int64, entityType models.EntityType, records []models.ChangeRecord[T], now time.Time) (int64, error) {
	var lastUSN int64

	for _, record := range records {
		if record.Entity.Owner() != userID {
			return 0, fmt.Errorf("%w: %s %s belongs to user %d", ErrEntityOwnerMismatch, entityType, record.Entity.Key(), record.Entity.Owner())
		}

		changeType := record.ChangeType
		if changeType == "" {
			changeType = models.ChangeUpdate
		}
		modifiedAt := record.ModifiedAt
		if modifiedAt.IsZero() {
			modifiedAt = now
		}

		if err := repo.Upsert(ctx, record.Entity); err != nil {
			return 0, fmt.Errorf("upsert %s %s: %w", entityType, record.Entity.Key(), err)
		}

		entry, err := ledger.Append(ctx, userID, entityType, record.Entity.Key(), changeType, modifiedAt)
		if err != nil {
			return 0, fmt.Errorf("append entry for %s %s: %w", entityType, record.Entity.Key(), err)
		}
		lastUSN = entry.USN
	}

	return lastUSN, nil
}
