package store

import (
	"github.com/flashdeck/flashdeck/models"
)

// rowScanner abstracts *sql.Row and *sql.Rows for the table specs.
type rowScanner interface {
	Scan(dest ...any) error
}

// tableSpec binds one entity shape to its table: the column list, the
// argument extractor used by upserts, and the row scanner used by selects.
// Column order is the single source of truth shared by all three.
type tableSpec[T models.Syncable] struct {
	table   string
	columns []string
	values  func(T) []any
	scan    func(rowScanner) (T, error)
}

var deckTable = tableSpec[models.Deck]{
	table:   "decks",
	columns: []string{"id", "user_id", "name", "description", "parent_id", "created_at", "updated_at"},
	values: func(d models.Deck) []any {
		return []any{d.ID, d.UserID, d.Name, d.Description, d.ParentID, d.CreatedAt, d.UpdatedAt}
	},
	scan: func(r rowScanner) (models.Deck, error) {
		var d models.Deck
		err := r.Scan(&d.ID, &d.UserID, &d.Name, &d.Description, &d.ParentID, &d.CreatedAt, &d.UpdatedAt)
		return d, err
	},
}

var tagTable = tableSpec[models.Tag]{
	table:   "tags",
	columns: []string{"id", "user_id", "name", "created_at", "updated_at"},
	values: func(t models.Tag) []any {
		return []any{t.ID, t.UserID, t.Name, t.CreatedAt, t.UpdatedAt}
	},
	scan: func(r rowScanner) (models.Tag, error) {
		var t models.Tag
		err := r.Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
		return t, err
	},
}

var noteTypeTable = tableSpec[models.NoteType]{
	table:   "note_types",
	columns: []string{"id", "user_id", "name", "fields", "templates", "css", "created_at", "updated_at"},
	values: func(n models.NoteType) []any {
		return []any{n.ID, n.UserID, n.Name, n.Fields, n.Templates, n.CSS, n.CreatedAt, n.UpdatedAt}
	},
	scan: func(r rowScanner) (models.NoteType, error) {
		var n models.NoteType
		err := r.Scan(&n.ID, &n.UserID, &n.Name, &n.Fields, &n.Templates, &n.CSS, &n.CreatedAt, &n.UpdatedAt)
		return n, err
	},
}

var noteTable = tableSpec[models.Note]{
	table:   "notes",
	columns: []string{"id", "user_id", "note_type_id", "deck_id", "field_values", "tags", "created_at", "updated_at"},
	values: func(n models.Note) []any {
		return []any{n.ID, n.UserID, n.NoteTypeID, n.DeckID, n.FieldValues, n.Tags, n.CreatedAt, n.UpdatedAt}
	},
	scan: func(r rowScanner) (models.Note, error) {
		var n models.Note
		err := r.Scan(&n.ID, &n.UserID, &n.NoteTypeID, &n.DeckID, &n.FieldValues, &n.Tags, &n.CreatedAt, &n.UpdatedAt)
		return n, err
	},
}

var cardTable = tableSpec[models.Card]{
	table:   "cards",
	columns: []string{"id", "user_id", "note_id", "deck_id", "ordinal", "due", "ivl", "ease_factor", "reps", "lapses", "created_at", "updated_at"},
	values: func(c models.Card) []any {
		return []any{c.ID, c.UserID, c.NoteID, c.DeckID, c.Ordinal, c.Due, c.Interval, c.EaseFactor, c.Reps, c.Lapses, c.CreatedAt, c.UpdatedAt}
	},
	scan: func(r rowScanner) (models.Card, error) {
		var c models.Card
		err := r.Scan(&c.ID, &c.UserID, &c.NoteID, &c.DeckID, &c.Ordinal, &c.Due, &c.Interval, &c.EaseFactor, &c.Reps, &c.Lapses, &c.CreatedAt, &c.UpdatedAt)
		return c, err
	},
}

var mediaRefTable = tableSpec[models.MediaRef]{
	table:   "media_refs",
	columns: []string{"id", "user_id", "file_name", "checksum", "size", "created_at", "updated_at"},
	values: func(m models.MediaRef) []any {
		return []any{m.ID, m.UserID, m.FileName, m.Checksum, m.Size, m.CreatedAt, m.UpdatedAt}
	},
	scan: func(r rowScanner) (models.MediaRef, error) {
		var m models.MediaRef
		err := r.Scan(&m.ID, &m.UserID, &m.FileName, &m.Checksum, &m.Size, &m.CreatedAt, &m.UpdatedAt)
		return m, err
	},
}
