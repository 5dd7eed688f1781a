package validators

import (
	"context"
	"fmt"

	"github.com/flashdeck/flashdeck/models"
)

var allowedChangeTypes = []models.ChangeType{
	models.ChangeCreate,
	models.ChangeUpdate,
	models.ChangeDelete,
}

var allowedEntityTypes = []models.EntityType{
	models.EntityDeck,
	models.EntityTag,
	models.EntityNoteType,
	models.EntityNote,
	models.EntityCard,
	models.EntityMedia,
}

// ChangesetValidator checks the structural invariants of inbound changesets
// and snapshots before they reach the ledger: every record carries a
// non-empty entity id and a positive owner, change types are known, and
// deletion refs name known entity tables. Semantic checks (ownership against
// the authenticated user) stay in the service layer.
type ChangesetValidator struct {
}

func NewChangesetValidator() Validator {
	return &ChangesetValidator{}
}

func (v *ChangesetValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Changeset:
		return v.validateChangeset(ctx, value)
	case *models.Changeset:
		return v.validateChangeset(ctx, *value)

	case models.Collection:
		return v.validateCollection(ctx, value)
	case *models.Collection:
		return v.validateCollection(ctx, *value)

	case models.DeletedRef:
		return v.validateDeletedRef(value)

	default:
		return ErrUnsupportedType
	}
}

func isAllowedChangeType(ct models.ChangeType) bool {
	// records may omit the change type; the ledger defaults it to update
	if ct == "" {
		return true
	}
	for _, t := range allowedChangeTypes {
		if ct == t {
			return true
		}
	}
	return false
}

func isAllowedEntityType(et models.EntityType) bool {
	for _, t := range allowedEntityTypes {
		if et == t {
			return true
		}
	}
	return false
}

func (v *ChangesetValidator) validateChangeset(_ context.Context, changes models.Changeset) error {
	if changes.USN < 0 {
		return ErrNegativeUSN
	}

	if err := validateRecords(changes.Decks); err != nil {
		return fmt.Errorf("decks: %w", err)
	}
	if err := validateRecords(changes.Tags); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	if err := validateRecords(changes.NoteTypes); err != nil {
		return fmt.Errorf("note types: %w", err)
	}
	if err := validateRecords(changes.Notes); err != nil {
		return fmt.Errorf("notes: %w", err)
	}
	if err := validateRecords(changes.Cards); err != nil {
		return fmt.Errorf("cards: %w", err)
	}
	if err := validateRecords(changes.MediaRefs); err != nil {
		return fmt.Errorf("media refs: %w", err)
	}

	for _, ref := range changes.DeletedIDs {
		if err := v.validateDeletedRef(ref); err != nil {
			return fmt.Errorf("deleted ids: %w", err)
		}
	}

	return nil
}

func (v *ChangesetValidator) validateCollection(_ context.Context, snapshot models.Collection) error {
	if err := validateEntities(snapshot.Decks); err != nil {
		return fmt.Errorf("decks: %w", err)
	}
	if err := validateEntities(snapshot.Tags); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	if err := validateEntities(snapshot.NoteTypes); err != nil {
		return fmt.Errorf("note types: %w", err)
	}
	if err := validateEntities(snapshot.Notes); err != nil {
		return fmt.Errorf("notes: %w", err)
	}
	if err := validateEntities(snapshot.Cards); err != nil {
		return fmt.Errorf("cards: %w", err)
	}
	if err := validateEntities(snapshot.MediaRefs); err != nil {
		return fmt.Errorf("media refs: %w", err)
	}
	return nil
}

func (v *ChangesetValidator) validateDeletedRef(ref models.DeletedRef) error {
	if ref.EntityID == "" {
		return ErrInvalidEntityID
	}
	if !isAllowedEntityType(ref.EntityType) {
		return ErrInvalidEntityType
	}
	return nil
}

func validateRecords[T models.Syncable](records []models.ChangeRecord[T]) error {
	for _, record := range records {
		if record.Entity.Key() == "" {
			return ErrInvalidEntityID
		}
		if record.Entity.Owner() <= 0 {
			return ErrInvalidUserID
		}
		if !isAllowedChangeType(record.ChangeType) {
			return ErrInvalidChangeType
		}
		if record.USN < 0 {
			return ErrNegativeUSN
		}
	}
	return nil
}

func validateEntities[T models.Syncable](entities []T) error {
	for _, entity := range entities {
		if entity.Key() == "" {
			return ErrInvalidEntityID
		}
		if entity.Owner() <= 0 {
			return ErrInvalidUserID
		}
	}
	return nil
}
