package store

import (
	"context"

	"github.com/flashdeck/flashdeck/internal/logger"
	"github.com/flashdeck/flashdeck/models"
)

// Storages bundles every repository backed by one database connection.
// Transactions started through [Storages.WithinTransaction] cover all of
// them, because each repository resolves its connection from the context.
type Storages struct {
	Ledger    LedgerRepository
	SyncMeta  SyncMetaRepository
	Decks     EntityRepository[models.Deck]
	Tags      EntityRepository[models.Tag]
	NoteTypes EntityRepository[models.NoteType]
	Notes     EntityRepository[models.Note]
	Cards     EntityRepository[models.Card]
	MediaRefs EntityRepository[models.MediaRef]

	Tx TransactionRunner
}

func NewStorages(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		Ledger:    NewLedgerRepository(db, log),
		SyncMeta:  NewSyncMetaRepository(db, log),
		Decks:     NewDeckRepository(db, log),
		Tags:      NewTagRepository(db, log),
		NoteTypes: NewNoteTypeRepository(db, log),
		Notes:     NewNoteRepository(db, log),
		Cards:     NewCardRepository(db, log),
		MediaRefs: NewMediaRefRepository(db, log),
		Tx:        db,
	}
}

// WithinTransaction implements [TransactionRunner].
func (s *Storages) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.Tx.WithinTransaction(ctx, fn)
}
