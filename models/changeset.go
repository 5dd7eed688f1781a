package models

import "time"

// ChangeRecord pairs a changed entity, resolved against current store state,
// with the ledger metadata of its most recent change inside the changeset
// window. Deletions never appear as ChangeRecords; they travel separately
// as DeletedRefs.
type ChangeRecord[T Syncable] struct {
	Entity     T          `json:"entity"`
	USN        int64      `json:"usn"`
	ChangeType ChangeType `json:"change_type"`
	ModifiedAt time.Time  `json:"modified_at"`
}

// DeletedRef identifies a deleted entity inside a changeset.
type DeletedRef struct {
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
}

// Changeset bundles everything that changed for one user past a USN
// watermark, one typed slice per entity shape. USN is the high-water mark
// of the bundle: the last ledger entry it covers, or the requested
// watermark unchanged when nothing changed.
//
// A changeset is transient. It is rebuilt from the ledger and current
// entity rows on every request and never persisted as a unit.
type Changeset struct {
	USN        int64                    `json:"usn"`
	Decks      []ChangeRecord[Deck]     `json:"decks,omitempty"`
	Tags       []ChangeRecord[Tag]      `json:"tags,omitempty"`
	NoteTypes  []ChangeRecord[NoteType] `json:"note_types,omitempty"`
	Notes      []ChangeRecord[Note]     `json:"notes,omitempty"`
	Cards      []ChangeRecord[Card]     `json:"cards,omitempty"`
	MediaRefs  []ChangeRecord[MediaRef] `json:"media_refs,omitempty"`
	DeletedIDs []DeletedRef             `json:"deleted_ids,omitempty"`
}

// RecordCount returns the total number of change records and deletions
// carried by the changeset.
func (c Changeset) RecordCount() int {
	return len(c.Decks) + len(c.Tags) + len(c.NoteTypes) +
		len(c.Notes) + len(c.Cards) + len(c.MediaRefs) + len(c.DeletedIDs)
}

// Empty reports whether the changeset carries no changes at all.
func (c Changeset) Empty() bool {
	return c.RecordCount() == 0
}

// Collection is a full snapshot of one user's syncable rows, used by full
// upload and full download. Slices are ordered parents-first so that a
// receiver can insert them as-is without violating references.
type Collection struct {
	Decks     []Deck     `json:"decks"`
	Tags      []Tag      `json:"tags"`
	NoteTypes []NoteType `json:"note_types"`
	Notes     []Note     `json:"notes"`
	Cards     []Card     `json:"cards"`
	MediaRefs []MediaRef `json:"media_refs"`
}

// Size returns the total number of rows in the snapshot.
func (c Collection) Size() int {
	return len(c.Decks) + len(c.Tags) + len(c.NoteTypes) +
		len(c.Notes) + len(c.Cards) + len(c.MediaRefs)
}
