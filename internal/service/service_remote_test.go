package service

import (
	"context"
	"testing"
	"time"

	"github.com/flashdeck/flashdeck/internal/logger"
	"github.com/flashdeck/flashdeck/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRemoteService(t *testing.T) (RemoteSyncService, *fakeStorages) {
	t.Helper()

	storages := newFakeStorages()
	log := logger.Nop()

	ledger := NewLedgerService(storages.Storages, log)
	changes := NewChangesetService(storages.Storages, log)
	svc := NewRemoteSyncService(storages.Storages, changes, ledger, log)

	return svc, storages
}

func TestRemoteChangesSince_ReportsCurrentCounter(t *testing.T) {
	svc, _ := newTestRemoteService(t)
	ctx := context.Background()

	_, err := svc.RecordChanges(ctx, 1, models.Changeset{
		Decks: []models.ChangeRecord[models.Deck]{{Entity: models.Deck{ID: "deck-1", UserID: 1}, ChangeType: models.ChangeCreate}},
		Tags:  []models.ChangeRecord[models.Tag]{{Entity: models.Tag{ID: "tag-1", UserID: 1}, ChangeType: models.ChangeCreate}},
	})
	require.NoError(t, err)

	changes, err := svc.ChangesSince(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changes.USN)
	assert.Equal(t, 2, changes.RecordCount())
}

func TestRemoteChangesSince_EmptyWindowStillReportsCounter(t *testing.T) {
	svc, _ := newTestRemoteService(t)
	ctx := context.Background()

	_, err := svc.RecordChanges(ctx, 1, models.Changeset{
		Decks: []models.ChangeRecord[models.Deck]{{Entity: models.Deck{ID: "deck-1", UserID: 1}, ChangeType: models.ChangeCreate}},
	})
	require.NoError(t, err)

	// a caller already at the head gets an empty changeset, but the USN
	// must still be the live counter so it can detect resets
	changes, err := svc.ChangesSince(ctx, 1, 1)
	require.NoError(t, err)
	assert.True(t, changes.Empty())
	assert.Equal(t, int64(1), changes.USN)
}

func TestRemoteRecordChanges_AdvancesCounter(t *testing.T) {
	svc, storages := newTestRemoteService(t)
	ctx := context.Background()

	usn, err := svc.RecordChanges(ctx, 1, models.Changeset{
		Notes: []models.ChangeRecord[models.Note]{{
			Entity:     models.Note{ID: "note-1", UserID: 1},
			ChangeType: models.ChangeCreate,
			ModifiedAt: time.Now(),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), usn)

	_, ok := storages.notes.get(1, "note-1")
	assert.True(t, ok)

	entry, found, err := storages.ledger.LatestEntryFor(ctx, 1, models.EntityNote, "note-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(1), entry.USN)
}

func TestRemoteSnapshot(t *testing.T) {
	svc, _ := newTestRemoteService(t)
	ctx := context.Background()

	_, err := svc.RecordChanges(ctx, 1, models.Changeset{
		Decks: []models.ChangeRecord[models.Deck]{{Entity: models.Deck{ID: "deck-1", UserID: 1}, ChangeType: models.ChangeCreate}},
		Cards: []models.ChangeRecord[models.Card]{{Entity: models.Card{ID: "card-1", UserID: 1, DeckID: "deck-1"}, ChangeType: models.ChangeCreate}},
	})
	require.NoError(t, err)

	snapshot, usn, err := svc.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, snapshot.Size())
	assert.Equal(t, int64(2), usn)
}

func TestRemoteReplaceSnapshot_RestartsHistory(t *testing.T) {
	svc, storages := newTestRemoteService(t)
	ctx := context.Background()

	// existing server state with a history other devices have seen
	_, err := svc.RecordChanges(ctx, 1, models.Changeset{
		Decks: []models.ChangeRecord[models.Deck]{{Entity: models.Deck{ID: "old-deck", UserID: 1}, ChangeType: models.ChangeCreate}},
		Notes: []models.ChangeRecord[models.Note]{{Entity: models.Note{ID: "old-note", UserID: 1}, ChangeType: models.ChangeCreate}},
		Cards: []models.ChangeRecord[models.Card]{{Entity: models.Card{ID: "old-card", UserID: 1}, ChangeType: models.ChangeCreate}},
	})
	require.NoError(t, err)

	usn, err := svc.ReplaceSnapshot(ctx, 1, models.Collection{
		Decks: []models.Deck{{ID: "deck-1", UserID: 1}},
		Notes: []models.Note{{ID: "note-1", UserID: 1, DeckID: "deck-1"}},
	})
	require.NoError(t, err)

	// the counter restarts from 1, which is what pushes other devices
	// behind their stored watermark and into a full download
	assert.Equal(t, int64(2), usn)

	_, ok := storages.decks.get(1, "old-deck")
	assert.False(t, ok)
	_, ok = storages.cards.get(1, "old-card")
	assert.False(t, ok)
	_, ok = storages.decks.get(1, "deck-1")
	assert.True(t, ok)

	changes, err := svc.ChangesSince(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changes.USN)
	assert.Equal(t, 2, changes.RecordCount())
}

func TestRemoteReplaceSnapshot_RejectsMalformedSnapshot(t *testing.T) {
	svc, storages := newTestRemoteService(t)
	ctx := context.Background()

	_, err := svc.RecordChanges(ctx, 1, models.Changeset{
		Decks: []models.ChangeRecord[models.Deck]{{Entity: models.Deck{ID: "deck-1", UserID: 1}, ChangeType: models.ChangeCreate}},
	})
	require.NoError(t, err)

	_, err = svc.ReplaceSnapshot(ctx, 1, models.Collection{
		Decks: []models.Deck{{UserID: 1}},
	})
	require.ErrorIs(t, err, ErrInvalidChangeset)

	// existing state must survive the rejected replacement
	_, ok := storages.decks.get(1, "deck-1")
	assert.True(t, ok)
}

func TestRemoteReplaceSnapshot_IsolatesUsers(t *testing.T) {
	svc, storages := newTestRemoteService(t)
	ctx := context.Background()

	_, err := svc.RecordChanges(ctx, 2, models.Changeset{
		Decks: []models.ChangeRecord[models.Deck]{{Entity: models.Deck{ID: "deck-u2", UserID: 2}, ChangeType: models.ChangeCreate}},
	})
	require.NoError(t, err)

	_, err = svc.ReplaceSnapshot(ctx, 1, models.Collection{
		Decks: []models.Deck{{ID: "deck-u1", UserID: 1}},
	})
	require.NoError(t, err)

	_, ok := storages.decks.get(2, "deck-u2")
	assert.True(t, ok, "another user's rows must be untouched")
}
