package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/flashdeck/flashdeck/internal/logger"
	"github.com/flashdeck/flashdeck/models"
)

const (
	// appendLedgerEntry computes the next USN inside the insert itself so
	// that "read max, then write" cannot interleave between two callers.
	// The unique (user_id, usn) constraint backstops the race under
	// non-serializable isolation.
	appendLedgerEntry = `INSERT INTO sync_ledger (user_id, entity_type, entity_id, change_type, usn, modified_at)
		SELECT ?, ?, ?, ?, COALESCE(MAX(usn), 0) + 1, ?
		FROM sync_ledger
		WHERE user_id = ?
		RETURNING id, usn;`

	maxLedgerUSN = `SELECT COALESCE(MAX(usn), 0)
		FROM sync_ledger
		WHERE user_id = ?;`
)

var ledgerColumns = []string{"id", "user_id", "entity_type", "entity_id", "change_type", "usn", "modified_at"}

// ledgerRepository is the SQL-backed implementation of [LedgerRepository].
type ledgerRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewLedgerRepository(db *DB, log *logger.Logger) LedgerRepository {
	return &ledgerRepository{db: db, logger: log}
}

// Append implements [LedgerRepository].
func (l *ledgerRepository) Append(ctx context.Context, userID int64, entityType models.EntityType, entityID string, changeType models.ChangeType, modifiedAt time.Time) (models.LedgerEntry, error) {
	log := logger.FromContext(ctx)

	entry := models.LedgerEntry{
		UserID:     userID,
		EntityType: entityType,
		EntityID:   entityID,
		ChangeType: changeType,
		ModifiedAt: modifiedAt,
	}

	row := l.db.conn(ctx).QueryRowContext(ctx, l.db.rebind(appendLedgerEntry),
		userID, entityType, entityID, changeType, modifiedAt, userID)

	if err := row.Scan(&entry.ID, &entry.USN); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LedgerEntry{}, ErrLedgerEntryNotSaved
		}
		log.Err(err).
			Str("func", "ledgerRepository.Append").
			Int64("user_id", userID).
			Str("entity_id", entityID).
			Msg("failed to append ledger entry")
		return models.LedgerEntry{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return entry, nil
}

// MaxUSN implements [LedgerRepository].
func (l *ledgerRepository) MaxUSN(ctx context.Context, userID int64) (int64, error) {
	var usn int64
	row := l.db.conn(ctx).QueryRowContext(ctx, l.db.rebind(maxLedgerUSN), userID)
	if err := row.Scan(&usn); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return usn, nil
}

// EntriesSince implements [LedgerRepository]. The result is ordered by
// ascending USN, which is the order changesets are built in.
func (l *ledgerRepository) EntriesSince(ctx context.Context, userID, sinceUSN int64) ([]models.LedgerEntry, error) {
	log := logger.FromContext(ctx)

	query, args, err := l.db.sq.
		Select(ledgerColumns...).
		From("sync_ledger").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Gt{"usn": sinceUSN}).
		OrderBy("usn ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := l.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "ledgerRepository.EntriesSince").
			Int64("user_id", userID).
			Int64("since_usn", sinceUSN).
			Msg("failed to query ledger entries")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		if scanErr := rows.Scan(&entry.ID, &entry.UserID, &entry.EntityType, &entry.EntityID, &entry.ChangeType, &entry.USN, &entry.ModifiedAt); scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return entries, nil
}

// LatestEntryFor implements [LedgerRepository].
func (l *ledgerRepository) LatestEntryFor(ctx context.Context, userID int64, entityType models.EntityType, entityID string) (models.LedgerEntry, bool, error) {
	query, args, err := l.db.sq.
		Select(ledgerColumns...).
		From("sync_ledger").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"entity_type": entityType}).
		Where(squirrel.Eq{"entity_id": entityID}).
		OrderBy("usn DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return models.LedgerEntry{}, false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var entry models.LedgerEntry
	row := l.db.conn(ctx).QueryRowContext(ctx, query, args...)
	if err = row.Scan(&entry.ID, &entry.UserID, &entry.EntityType, &entry.EntityID, &entry.ChangeType, &entry.USN, &entry.ModifiedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.LedgerEntry{}, false, nil
		}
		return models.LedgerEntry{}, false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return entry, true, nil
}

// DeleteAllForUser implements [LedgerRepository].
func (l *ledgerRepository) DeleteAllForUser(ctx context.Context, userID int64) error {
	query, args, err := l.db.sq.
		Delete("sync_ledger").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = l.db.conn(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
