package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Masterminds/squirrel"
	"github.com/flashdeck/flashdeck/internal/logger"
	"github.com/flashdeck/flashdeck/models"
)

func newTestDB(t *testing.T) (*DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	testDB := &DB{
		DB:                 db,
		dialect:            DialectSQLite,
		sq:                 squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		errorClassificator: NewNopErrorClassifier(),
		logger:             l,
	}
	return testDB, mock, db
}

func newTestLedgerRepo(t *testing.T) (*ledgerRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	testDB, mock, db := newTestDB(t)
	repo := &ledgerRepository{db: testDB, logger: testDB.logger}
	return repo, mock, db
}

func TestLedgerAppend_Success(t *testing.T) {
	repo, mock, db := newTestLedgerRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "usn"}).AddRow(17, 6)

	mock.ExpectQuery("INSERT INTO sync_ledger").
		WithArgs(int64(1), string(models.EntityNote), "note-1", string(models.ChangeUpdate), now, int64(1)).
		WillReturnRows(rows)

	entry, err := repo.Append(ctx, 1, models.EntityNote, "note-1", models.ChangeUpdate, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.USN != 6 {
		t.Errorf("expected USN=6, got %d", entry.USN)
	}
	if entry.ID != 17 {
		t.Errorf("expected ID=17, got %d", entry.ID)
	}
	if entry.EntityID != "note-1" {
		t.Errorf("expected entity id note-1, got %s", entry.EntityID)
	}
}

func TestLedgerAppend_NoRowReturned(t *testing.T) {
	repo, mock, db := newTestLedgerRepo(t)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO sync_ledger").
		WillReturnRows(sqlmock.NewRows([]string{"id", "usn"}))

	_, err := repo.Append(context.Background(), 1, models.EntityCard, "card-1", models.ChangeCreate, time.Now())
	if !errors.Is(err, ErrLedgerEntryNotSaved) {
		t.Fatalf("expected ErrLedgerEntryNotSaved, got %v", err)
	}
}

func TestLedgerAppend_DBError(t *testing.T) {
	repo, mock, db := newTestLedgerRepo(t)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO sync_ledger").
		WillReturnError(errors.New("db network error"))

	_, err := repo.Append(context.Background(), 1, models.EntityDeck, "deck-1", models.ChangeCreate, time.Now())
	if !errors.Is(err, ErrExecutingStatement) {
		t.Fatalf("expected ErrExecutingStatement, got %v", err)
	}
}

func TestLedgerMaxUSN(t *testing.T) {
	repo, mock, db := newTestLedgerRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"usn"}).AddRow(12))

	usn, err := repo.MaxUSN(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usn != 12 {
		t.Errorf("expected max USN 12, got %d", usn)
	}
}

func TestLedgerEntriesSince(t *testing.T) {
	repo, mock, db := newTestLedgerRepo(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(ledgerColumns).
		AddRow(10, 1, "note", "note-1", "update", 6, now).
		AddRow(11, 1, "card", "card-1", "create", 7, now)

	mock.ExpectQuery("SELECT id, user_id, entity_type, entity_id, change_type, usn, modified_at FROM sync_ledger").
		WithArgs(int64(1), int64(5)).
		WillReturnRows(rows)

	entries, err := repo.EntriesSince(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].USN != 6 || entries[1].USN != 7 {
		t.Errorf("expected ascending USNs 6,7, got %d,%d", entries[0].USN, entries[1].USN)
	}
}

func TestLedgerEntriesSince_Empty(t *testing.T) {
	repo, mock, db := newTestLedgerRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id, user_id, entity_type, entity_id, change_type, usn, modified_at FROM sync_ledger").
		WithArgs(int64(1), int64(5)).
		WillReturnRows(sqlmock.NewRows(ledgerColumns))

	entries, err := repo.EntriesSince(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestLedgerLatestEntryFor_Found(t *testing.T) {
	repo, mock, db := newTestLedgerRepo(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(ledgerColumns).
		AddRow(11, 1, "note", "note-1", "delete", 9, now)

	mock.ExpectQuery("SELECT id, user_id, entity_type, entity_id, change_type, usn, modified_at FROM sync_ledger").
		WithArgs(int64(1), "note", "note-1").
		WillReturnRows(rows)

	entry, found, err := repo.LatestEntryFor(context.Background(), 1, models.EntityNote, "note-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected entry to be found")
	}
	if entry.ChangeType != models.ChangeDelete {
		t.Errorf("expected delete change, got %s", entry.ChangeType)
	}
}

func TestLedgerLatestEntryFor_NotFound(t *testing.T) {
	repo, mock, db := newTestLedgerRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id, user_id, entity_type, entity_id, change_type, usn, modified_at FROM sync_ledger").
		WithArgs(int64(1), "note", "missing").
		WillReturnRows(sqlmock.NewRows(ledgerColumns))

	_, found, err := repo.LatestEntryFor(context.Background(), 1, models.EntityNote, "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected entry to be absent")
	}
}

func TestLedgerDeleteAllForUser(t *testing.T) {
	repo, mock, db := newTestLedgerRepo(t)
	defer db.Close()

	mock.ExpectExec("DELETE FROM sync_ledger").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := repo.DeleteAllForUser(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
