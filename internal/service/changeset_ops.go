package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/flashdeck/flashdeck/internal/store"
	"github.com/flashdeck/flashdeck/models"
)

// entityKey identifies one entity across the two sides of a sync session.
type entityKey struct {
	Type models.EntityType
	ID   string
}

// entityApplyOrder ranks entity types parents-first. Upserts walk it
// ascending, deletes descending, so referenced rows always exist before
// their dependants and never vanish under them.
var entityApplyOrder = map[models.EntityType]int{
	models.EntityDeck:     0,
	models.EntityTag:      1,
	models.EntityNoteType: 2,
	models.EntityNote:     3,
	models.EntityCard:     4,
	models.EntityMedia:    5,
}

func sortRefsChildrenFirst(refs []models.DeletedRef) []models.DeletedRef {
	sorted := make([]models.DeletedRef, len(refs))
	copy(sorted, refs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return entityApplyOrder[sorted[i].EntityType] > entityApplyOrder[sorted[j].EntityType]
	})
	return sorted
}

// changesetMetas indexes the ledger metadata of every upsert record in the
// changeset by entity key. Deleted refs carry no metadata and are not
// indexed; remote deletions are judged separately against the local ledger.
func changesetMetas(changes models.Changeset) map[entityKey]models.RecordMeta {
	metas := make(map[entityKey]models.RecordMeta, changes.RecordCount())
	addMetas(metas, models.EntityDeck, changes.Decks)
	addMetas(metas, models.EntityTag, changes.Tags)
	addMetas(metas, models.EntityNoteType, changes.NoteTypes)
	addMetas(metas, models.EntityNote, changes.Notes)
	addMetas(metas, models.EntityCard, changes.Cards)
	addMetas(metas, models.EntityMedia, changes.MediaRefs)
	return metas
}

func addMetas[T models.Syncable](metas map[entityKey]models.RecordMeta, entityType models.EntityType, records []models.ChangeRecord[T]) {
	for _, record := range records {
		metas[entityKey{Type: entityType, ID: record.Entity.Key()}] = models.RecordMeta{
			USN:        record.USN,
			ModifiedAt: record.ModifiedAt,
		}
	}
}

// filterChangeset returns a copy of the changeset without the records
// whose entities lost their conflict. The bundle USN is preserved.
func filterChangeset(changes models.Changeset, drop map[entityKey]struct{}) models.Changeset {
	if len(drop) == 0 {
		return changes
	}

	filtered := models.Changeset{USN: changes.USN}
	filtered.Decks = filterRecords(models.EntityDeck, changes.Decks, drop)
	filtered.Tags = filterRecords(models.EntityTag, changes.Tags, drop)
	filtered.NoteTypes = filterRecords(models.EntityNoteType, changes.NoteTypes, drop)
	filtered.Notes = filterRecords(models.EntityNote, changes.Notes, drop)
	filtered.Cards = filterRecords(models.EntityCard, changes.Cards, drop)
	filtered.MediaRefs = filterRecords(models.EntityMedia, changes.MediaRefs, drop)

	for _, ref := range changes.DeletedIDs {
		if _, dropped := drop[entityKey{Type: ref.EntityType, ID: ref.EntityID}]; dropped {
			continue
		}
		filtered.DeletedIDs = append(filtered.DeletedIDs, ref)
	}

	return filtered
}

func filterRecords[T models.Syncable](entityType models.EntityType, records []models.ChangeRecord[T], drop map[entityKey]struct{}) []models.ChangeRecord[T] {
	if len(records) == 0 {
		return nil
	}

	kept := make([]models.ChangeRecord[T], 0, len(records))
	for _, record := range records {
		if _, dropped := drop[entityKey{Type: entityType, ID: record.Entity.Key()}]; dropped {
			continue
		}
		kept = append(kept, record)
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// applyChangeset writes a remote changeset into the entity store without
// touching the ledger. Skipping the ledger is what keeps applied remote
// changes from echoing back to the remote on the next push.
func applyChangeset(ctx context.Context, storages *store.Storages, userID int64, changes models.Changeset) error {
	if err := upsertRecords(ctx, storages.Decks, models.EntityDeck, changes.Decks); err != nil {
		return err
	}
	if err := upsertRecords(ctx, storages.Tags, models.EntityTag, changes.Tags); err != nil {
		return err
	}
	if err := upsertRecords(ctx, storages.NoteTypes, models.EntityNoteType, changes.NoteTypes); err != nil {
		return err
	}
	if err := upsertRecords(ctx, storages.Notes, models.EntityNote, changes.Notes); err != nil {
		return err
	}
	if err := upsertRecords(ctx, storages.Cards, models.EntityCard, changes.Cards); err != nil {
		return err
	}
	if err := upsertRecords(ctx, storages.MediaRefs, models.EntityMedia, changes.MediaRefs); err != nil {
		return err
	}

	for _, ref := range sortRefsChildrenFirst(changes.DeletedIDs) {
		if err := deleteEntityRef(ctx, storages, userID, ref); err != nil {
			return err
		}
	}

	return nil
}

func upsertRecords[T models.Syncable](ctx context.Context, repo store.EntityRepository[T], entityType models.EntityType, records []models.ChangeRecord[T]) error {
	for _, record := range records {
		if err := repo.Upsert(ctx, record.Entity); err != nil {
			return fmt.Errorf("apply %s %s: %w", entityType, record.Entity.Key(), err)
		}
	}
	return nil
}

func deleteEntityRef(ctx context.Context, storages *store.Storages, userID int64, ref models.DeletedRef) error {
	var err error

	switch ref.EntityType {
	case models.EntityDeck:
		err = storages.Decks.DeleteByID(ctx, userID, ref.EntityID)
	case models.EntityTag:
		err = storages.Tags.DeleteByID(ctx, userID, ref.EntityID)
	case models.EntityNoteType:
		err = storages.NoteTypes.DeleteByID(ctx, userID, ref.EntityID)
	case models.EntityNote:
		err = storages.Notes.DeleteByID(ctx, userID, ref.EntityID)
	case models.EntityCard:
		err = storages.Cards.DeleteByID(ctx, userID, ref.EntityID)
	case models.EntityMedia:
		err = storages.MediaRefs.DeleteByID(ctx, userID, ref.EntityID)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEntityType, ref.EntityType)
	}

	if err != nil {
		return fmt.Errorf("delete %s %s: %w", ref.EntityType, ref.EntityID, err)
	}
	return nil
}

// wipeUserData deletes every syncable row the user owns, children-first,
// optionally clearing the ledger as well. Used by the full download reset
// and by snapshot replacement on the serving side.
func wipeUserData(ctx context.Context, storages *store.Storages, userID int64, includeLedger bool) error {
	deleters := []struct {
		entityType models.EntityType
		fn         func(context.Context, int64) error
	}{
		{models.EntityMedia, storages.MediaRefs.DeleteAllByUser},
		{models.EntityCard, storages.Cards.DeleteAllByUser},
		{models.EntityNote, storages.Notes.DeleteAllByUser},
		{models.EntityNoteType, storages.NoteTypes.DeleteAllByUser},
		{models.EntityTag, storages.Tags.DeleteAllByUser},
		{models.EntityDeck, storages.Decks.DeleteAllByUser},
	}

	for _, d := range deleters {
		if err := d.fn(ctx, userID); err != nil {
			return fmt.Errorf("wipe %s rows: %w", d.entityType, err)
		}
	}

	if includeLedger {
		if err := storages.Ledger.DeleteAllForUser(ctx, userID); err != nil {
			return fmt.Errorf("wipe ledger: %w", err)
		}
	}

	return nil
}

// installCollection inserts a full snapshot parents-first. Every row must
// belong to userID.
func installCollection(ctx context.Context, storages *store.Storages, userID int64, snapshot models.Collection) error {
	if err := upsertAll(ctx, storages.Decks, models.EntityDeck, userID, snapshot.Decks); err != nil {
		return err
	}
	if err := upsertAll(ctx, storages.Tags, models.EntityTag, userID, snapshot.Tags); err != nil {
		return err
	}
	if err := upsertAll(ctx, storages.NoteTypes, models.EntityNoteType, userID, snapshot.NoteTypes); err != nil {
		return err
	}
	if err := upsertAll(ctx, storages.Notes, models.EntityNote, userID, snapshot.Notes); err != nil {
		return err
	}
	if err := upsertAll(ctx, storages.Cards, models.EntityCard, userID, snapshot.Cards); err != nil {
		return err
	}
	if err := upsertAll(ctx, storages.MediaRefs, models.EntityMedia, userID, snapshot.MediaRefs); err != nil {
		return err
	}
	return nil
}

func upsertAll[T models.Syncable](ctx context.Context, repo store.EntityRepository[T], entityType models.EntityType, userID int64, entities []T) error {
	for _, entity := range entities {
		if entity.Owner() != userID {
			return fmt.Errorf("%w: %s %s belongs to user %d", ErrEntityOwnerMismatch, entityType, entity.Key(), entity.Owner())
		}
		if err := repo.Upsert(ctx, entity); err != nil {
			return fmt.Errorf("install %s %s: %w", entityType, entity.Key(), err)
		}
	}
	return nil
}
