package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/flashdeck/flashdeck/internal/logger"
	"github.com/flashdeck/flashdeck/internal/store"
	"github.com/flashdeck/flashdeck/models"
)

type changesetService struct {
	storages *store.Storages
	logger   *logger.Logger
}

func NewChangesetService(storages *store.Storages, log *logger.Logger) ChangesetService {
	return &changesetService{storages: storages, logger: log}
}

// ChangesSince implements [ChangesetService]. The ledger tail is collapsed
// to one entry per entity (the latest wins), entity payloads are resolved
// against current rows in one batch query per table, and entities whose
// final entry is a delete become DeletedRefs.
func (c *changesetService) ChangesSince(ctx context.Context, userID, sinceUSN int64) (models.Changeset, error) {
	log := logger.FromContext(ctx)

	entries, err := c.storages.Ledger.EntriesSince(ctx, userID, sinceUSN)
	if err != nil {
		return models.Changeset{}, fmt.Errorf("read ledger tail: %w", err)
	}

	changes := models.Changeset{USN: sinceUSN}
	if len(entries) == 0 {
		return changes, nil
	}
	changes.USN = entries[len(entries)-1].USN

	// Entries arrive in ascending USN order, so overwriting keeps the
	// latest entry per entity.
	latest := make(map[entityKey]models.LedgerEntry, len(entries))
	for _, entry := range entries {
		latest[entityKey{Type: entry.EntityType, ID: entry.EntityID}] = entry
	}

	byType := make(map[models.EntityType]map[string]models.LedgerEntry)
	var deletes []models.LedgerEntry
	for key, entry := range latest {
		if entry.ChangeType == models.ChangeDelete {
			deletes = append(deletes, entry)
			continue
		}
		if byType[key.Type] == nil {
			byType[key.Type] = make(map[string]models.LedgerEntry)
		}
		byType[key.Type][key.ID] = entry
	}

	sort.Slice(deletes, func(i, j int) bool { return deletes[i].USN < deletes[j].USN })
	for _, entry := range deletes {
		changes.DeletedIDs = append(changes.DeletedIDs, models.DeletedRef{EntityType: entry.EntityType, EntityID: entry.EntityID})
	}

	if changes.Decks, err = collectRecords(ctx, c.storages.Decks, userID, byType[models.EntityDeck]); err != nil {
		return models.Changeset{}, err
	}
	if changes.Tags, err = collectRecords(ctx, c.storages.Tags, userID, byType[models.EntityTag]); err != nil {
		return models.Changeset{}, err
	}
	if changes.NoteTypes, err = collectRecords(ctx, c.storages.NoteTypes, userID, byType[models.EntityNoteType]); err != nil {
		return models.Changeset{}, err
	}
	if changes.Notes, err = collectRecords(ctx, c.storages.Notes, userID, byType[models.EntityNote]); err != nil {
		return models.Changeset{}, err
	}
	if changes.Cards, err = collectRecords(ctx, c.storages.Cards, userID, byType[models.EntityCard]); err != nil {
		return models.Changeset{}, err
	}
	if changes.MediaRefs, err = collectRecords(ctx, c.storages.MediaRefs, userID, byType[models.EntityMedia]); err != nil {
		return models.Changeset{}, err
	}

	log.Debug().
		Str("func", "changesetService.ChangesSince").
		Int64("user_id", userID).
		Int64("since_usn", sinceUSN).
		Int("record_count", changes.RecordCount()).
		Int64("usn", changes.USN).
		Msg("built changeset")

	return changes, nil
}

// Snapshot implements [ChangesetService].
func (c *changesetService) Snapshot(ctx context.Context, userID int64) (models.Collection, error) {
	var (
		snapshot models.Collection
		err      error
	)

	if snapshot.Decks, err = c.storages.Decks.SelectAllByUser(ctx, userID); err != nil {
		return models.Collection{}, fmt.Errorf("snapshot decks: %w", err)
	}
	if snapshot.Tags, err = c.storages.Tags.SelectAllByUser(ctx, userID); err != nil {
		return models.Collection{}, fmt.Errorf("snapshot tags: %w", err)
	}
	if snapshot.NoteTypes, err = c.storages.NoteTypes.SelectAllByUser(ctx, userID); err != nil {
		return models.Collection{}, fmt.Errorf("snapshot note types: %w", err)
	}
	if snapshot.Notes, err = c.storages.Notes.SelectAllByUser(ctx, userID); err != nil {
		return models.Collection{}, fmt.Errorf("snapshot notes: %w", err)
	}
	if snapshot.Cards, err = c.storages.Cards.SelectAllByUser(ctx, userID); err != nil {
		return models.Collection{}, fmt.Errorf("snapshot cards: %w", err)
	}
	if snapshot.MediaRefs, err = c.storages.MediaRefs.SelectAllByUser(ctx, userID); err != nil {
		return models.Collection{}, fmt.Errorf("snapshot media refs: %w", err)
	}

	return snapshot, nil
}

// collectRecords resolves the latest ledger entries of one entity type
// against current rows. Ids whose row vanished between the ledger read and
// the entity read are skipped; the delete that removed them will appear in
// the next changeset window.
func collectRecords[T models.Syncable](ctx context.Context, repo store.EntityRepository[T], userID int64, wanted map[string]models.LedgerEntry) ([]models.ChangeRecord[T], error) {
	if len(wanted) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(wanted))
	for id := range wanted {
		ids = append(ids, id)
	}

	entities, err := repo.SelectByIDs(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve changed entities: %w", err)
	}

	records := make([]models.ChangeRecord[T], 0, len(entities))
	for _, entity := range entities {
		entry := wanted[entity.Key()]
		records = append(records, models.ChangeRecord[T]{
			Entity:     entity,
			USN:        entry.USN,
			ChangeType: entry.ChangeType,
			ModifiedAt: entry.ModifiedAt,
		})
	}

	sort.Slice(records, func(i, j int) bool { return records[i].USN < records[j].USN })

	return records, nil
}
