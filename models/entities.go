// Package models defines the shared data model of the flashdeck sync engine:
// the syncable entity shapes (decks, tags, note types, notes, cards, media
// references), the change-ledger and watermark records, and the changeset
// envelope exchanged between replicas.
package models

import "time"

// EntityType identifies one of the syncable entity tables.
type EntityType string

const (
	EntityNote     EntityType = "note"
	EntityCard     EntityType = "card"
	EntityDeck     EntityType = "deck"
	EntityTag      EntityType = "tag"
	EntityNoteType EntityType = "note_type"
	EntityMedia    EntityType = "media"
)

// ChangeType classifies a single ledger mutation.
type ChangeType string

const (
	ChangeCreate ChangeType = "create"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

// Syncable is implemented by every entity shape that participates in sync.
// Key returns the entity's primary identifier; Owner returns the owning user.
type Syncable interface {
	Key() string
	Owner() int64
}

// Deck is a named collection of cards. Decks form the top of the entity
// dependency chain: notes and cards reference them.
type Deck struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ParentID    *string   `json:"parent_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (d Deck) Key() string  { return d.ID }
func (d Deck) Owner() int64 { return d.UserID }

// Tag is a user-scoped label attached to notes by name.
type Tag struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t Tag) Key() string  { return t.ID }
func (t Tag) Owner() int64 { return t.UserID }

// NoteType describes the field and template layout shared by a family of
// notes. Fields and Templates are stored as JSON documents; the sync engine
// treats them as opaque payloads.
type NoteType struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Fields    string    `json:"fields"`
	Templates string    `json:"templates"`
	CSS       string    `json:"css,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (n NoteType) Key() string  { return n.ID }
func (n NoteType) Owner() int64 { return n.UserID }

// Note holds the user-authored content cards are generated from.
// FieldValues is a JSON document keyed by the note type's field names;
// Tags is the space-separated tag-name list the original format uses.
type Note struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	NoteTypeID  string    `json:"note_type_id"`
	DeckID      string    `json:"deck_id"`
	FieldValues string    `json:"field_values"`
	Tags        string    `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (n Note) Key() string  { return n.ID }
func (n Note) Owner() int64 { return n.UserID }

// Card is a single reviewable item generated from a note template.
// Scheduling state travels with the card so that review progress syncs
// across devices.
type Card struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	NoteID     string    `json:"note_id"`
	DeckID     string    `json:"deck_id"`
	Ordinal    int       `json:"ordinal"`
	Due        int64     `json:"due"`
	Interval   int       `json:"interval"`
	EaseFactor int       `json:"ease_factor"`
	Reps       int       `json:"reps"`
	Lapses     int       `json:"lapses"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (c Card) Key() string  { return c.ID }
func (c Card) Owner() int64 { return c.UserID }

// MediaRef points at a media object (image, audio) referenced by note
// fields. Only the reference and content hash sync through this engine;
// blob transfer is handled out of band.
type MediaRef struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	FileName  string    `json:"file_name"`
	Checksum  string    `json:"checksum"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m MediaRef) Key() string  { return m.ID }
func (m MediaRef) Owner() int64 { return m.UserID }
