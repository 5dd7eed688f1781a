package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/flashdeck/flashdeck/internal/store"
	"github.com/flashdeck/flashdeck/models"
)

// In-memory storages. The sync engine's behaviour lives above SQL, so the
// scenario tests run against these instead of a database; the repository
// contracts themselves are covered by the store package tests.

type fakeLedger struct {
	mu      sync.Mutex
	entries map[int64][]models.LedgerEntry
	nextID  int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{entries: make(map[int64][]models.LedgerEntry)}
}

func (f *fakeLedger) Append(_ context.Context, userID int64, entityType models.EntityType, entityID string, changeType models.ChangeType, modifiedAt time.Time) (models.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var maxUSN int64
	if tail := f.entries[userID]; len(tail) > 0 {
		maxUSN = tail[len(tail)-1].USN
	}

	f.nextID++
	entry := models.LedgerEntry{
		ID:         f.nextID,
		UserID:     userID,
		EntityType: entityType,
		EntityID:   entityID,
		ChangeType: changeType,
		USN:        maxUSN + 1,
		ModifiedAt: modifiedAt,
	}
	f.entries[userID] = append(f.entries[userID], entry)
	return entry, nil
}

func (f *fakeLedger) MaxUSN(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tail := f.entries[userID]
	if len(tail) == 0 {
		return 0, nil
	}
	return tail[len(tail)-1].USN, nil
}

func (f *fakeLedger) EntriesSince(_ context.Context, userID, sinceUSN int64) ([]models.LedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []models.LedgerEntry
	for _, entry := range f.entries[userID] {
		if entry.USN > sinceUSN {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (f *fakeLedger) LatestEntryFor(_ context.Context, userID int64, entityType models.EntityType, entityID string) (models.LedgerEntry, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tail := f.entries[userID]
	for i := len(tail) - 1; i >= 0; i-- {
		if tail[i].EntityType == entityType && tail[i].EntityID == entityID {
			return tail[i], true, nil
		}
	}
	return models.LedgerEntry{}, false, nil
}

func (f *fakeLedger) DeleteAllForUser(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.entries, userID)
	return nil
}

type fakeSyncMeta struct {
	mu    sync.Mutex
	metas map[int64]models.SyncMeta
}

func newFakeSyncMeta() *fakeSyncMeta {
	return &fakeSyncMeta{metas: make(map[int64]models.SyncMeta)}
}

func (f *fakeSyncMeta) GetOrCreate(_ context.Context, userID int64) (models.SyncMeta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	meta, ok := f.metas[userID]
	if !ok {
		meta = models.SyncMeta{UserID: userID, SchemaVersion: models.CurrentSchemaVersion}
		f.metas[userID] = meta
	}
	return meta, nil
}

func (f *fakeSyncMeta) AcquireLease(_ context.Context, userID int64, now time.Time, expiry time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	meta, ok := f.metas[userID]
	if !ok {
		return false, nil
	}
	if meta.IsSyncing && meta.SyncStartedAt != nil && !meta.SyncStartedAt.Before(now.Add(-expiry)) {
		return false, nil
	}

	meta.IsSyncing = true
	meta.SyncStartedAt = &now
	f.metas[userID] = meta
	return true, nil
}

func (f *fakeSyncMeta) ReleaseLease(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	meta := f.metas[userID]
	meta.IsSyncing = false
	meta.SyncStartedAt = nil
	f.metas[userID] = meta
	return nil
}

func (f *fakeSyncMeta) UpdateWatermark(_ context.Context, meta models.SyncMeta) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, ok := f.metas[meta.UserID]
	if !ok {
		return store.ErrSyncMetaNotFound
	}

	current.LastSyncedUSN = meta.LastSyncedUSN
	current.ServerUSN = meta.ServerUSN
	current.LastSyncAt = meta.LastSyncAt
	current.SchemaVersion = meta.SchemaVersion
	f.metas[meta.UserID] = current
	return nil
}

// setMeta seeds a watermark directly, bypassing GetOrCreate.
func (f *fakeSyncMeta) setMeta(meta models.SyncMeta) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metas[meta.UserID] = meta
}

func (f *fakeSyncMeta) get(userID int64) models.SyncMeta {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.metas[userID]
}

type fakeEntityRepo[T models.Syncable] struct {
	mu   sync.Mutex
	rows map[int64]map[string]T
}

func newFakeEntityRepo[T models.Syncable]() *fakeEntityRepo[T] {
	return &fakeEntityRepo[T]{rows: make(map[int64]map[string]T)}
}

func (f *fakeEntityRepo[T]) Upsert(_ context.Context, entity T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.rows[entity.Owner()] == nil {
		f.rows[entity.Owner()] = make(map[string]T)
	}
	f.rows[entity.Owner()][entity.Key()] = entity
	return nil
}

func (f *fakeEntityRepo[T]) SelectByIDs(_ context.Context, userID int64, ids []string) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []T
	for _, id := range ids {
		if entity, ok := f.rows[userID][id]; ok {
			result = append(result, entity)
		}
	}
	return result, nil
}

func (f *fakeEntityRepo[T]) SelectAllByUser(_ context.Context, userID int64) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []T
	for _, entity := range f.rows[userID] {
		result = append(result, entity)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key() < result[j].Key() })
	return result, nil
}

func (f *fakeEntityRepo[T]) DeleteByID(_ context.Context, userID int64, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.rows[userID], id)
	return nil
}

func (f *fakeEntityRepo[T]) DeleteAllByUser(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.rows, userID)
	return nil
}

func (f *fakeEntityRepo[T]) get(userID int64, id string) (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entity, ok := f.rows[userID][id]
	return entity, ok
}

func (f *fakeEntityRepo[T]) count(userID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows[userID])
}

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeStorages groups the fakes with typed accessors the tests use to
// inspect state.
type fakeStorages struct {
	*store.Storages

	ledger   *fakeLedger
	syncMeta *fakeSyncMeta
	decks    *fakeEntityRepo[models.Deck]
	tags     *fakeEntityRepo[models.Tag]
	types    *fakeEntityRepo[models.NoteType]
	notes    *fakeEntityRepo[models.Note]
	cards    *fakeEntityRepo[models.Card]
	media    *fakeEntityRepo[models.MediaRef]
}

func newFakeStorages() *fakeStorages {
	f := &fakeStorages{
		ledger:   newFakeLedger(),
		syncMeta: newFakeSyncMeta(),
		decks:    newFakeEntityRepo[models.Deck](),
		tags:     newFakeEntityRepo[models.Tag](),
		types:    newFakeEntityRepo[models.NoteType](),
		notes:    newFakeEntityRepo[models.Note](),
		cards:    newFakeEntityRepo[models.Card](),
		media:    newFakeEntityRepo[models.MediaRef](),
	}
	f.Storages = &store.Storages{
		Ledger:    f.ledger,
		SyncMeta:  f.syncMeta,
		Decks:     f.decks,
		Tags:      f.tags,
		NoteTypes: f.types,
		Notes:     f.notes,
		Cards:     f.cards,
		MediaRefs: f.media,
		Tx:        passthroughTx{},
	}
	return f
}
