package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/flashdeck/flashdeck/internal/logger"
	"github.com/flashdeck/flashdeck/models"
)

const (
	createSyncMeta = `INSERT INTO sync_meta (user_id, schema_version)
		VALUES (?, ?)
		ON CONFLICT (user_id) DO NOTHING;`

	selectSyncMeta = `SELECT user_id, last_synced_usn, server_usn, last_sync_at, schema_version, is_syncing, sync_started_at
		FROM sync_meta
		WHERE user_id = ?;`

	// acquireSyncLease is the single concurrency gate of the engine: the
	// conditional update either takes the lease (one row affected) or
	// observes a live one (zero rows). A lease older than the expiry is
	// treated as abandoned and taken over.
	acquireSyncLease = `UPDATE sync_meta
		SET is_syncing = TRUE, sync_started_at = ?
		WHERE user_id = ?
		  AND (is_syncing = FALSE OR sync_started_at IS NULL OR sync_started_at < ?);`

	releaseSyncLease = `UPDATE sync_meta
		SET is_syncing = FALSE, sync_started_at = NULL
		WHERE user_id = ?;`

	updateSyncWatermark = `UPDATE sync_meta
		SET last_synced_usn = ?, server_usn = ?, last_sync_at = ?, schema_version = ?
		WHERE user_id = ?;`
)

// syncMetaRepository is the SQL-backed implementation of
// [SyncMetaRepository].
type syncMetaRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewSyncMetaRepository(db *DB, log *logger.Logger) SyncMetaRepository {
	return &syncMetaRepository{db: db, logger: log}
}

// GetOrCreate implements [SyncMetaRepository]. The insert is a no-op when
// the row already exists, so concurrent first accesses converge on one row.
func (s *syncMetaRepository) GetOrCreate(ctx context.Context, userID int64) (models.SyncMeta, error) {
	log := logger.FromContext(ctx)
	conn := s.db.conn(ctx)

	if _, err := conn.ExecContext(ctx, s.db.rebind(createSyncMeta), userID, models.CurrentSchemaVersion); err != nil {
		log.Err(err).
			Str("func", "syncMetaRepository.GetOrCreate").
			Int64("user_id", userID).
			Msg("failed to create sync meta row")
		return models.SyncMeta{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	var meta models.SyncMeta
	row := conn.QueryRowContext(ctx, s.db.rebind(selectSyncMeta), userID)
	err := row.Scan(&meta.UserID, &meta.LastSyncedUSN, &meta.ServerUSN, &meta.LastSyncAt, &meta.SchemaVersion, &meta.IsSyncing, &meta.SyncStartedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SyncMeta{}, ErrSyncMetaNotFound
		}
		return models.SyncMeta{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return meta, nil
}

// AcquireLease implements [SyncMetaRepository].
func (s *syncMetaRepository) AcquireLease(ctx context.Context, userID int64, now time.Time, expiry time.Duration) (bool, error) {
	log := logger.FromContext(ctx)

	res, err := s.db.conn(ctx).ExecContext(ctx, s.db.rebind(acquireSyncLease), now, userID, now.Add(-expiry))
	if err != nil {
		log.Err(err).
			Str("func", "syncMetaRepository.AcquireLease").
			Int64("user_id", userID).
			Msg("failed to acquire sync lease")
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return affected == 1, nil
}

// ReleaseLease implements [SyncMetaRepository].
func (s *syncMetaRepository) ReleaseLease(ctx context.Context, userID int64) error {
	if _, err := s.db.conn(ctx).ExecContext(ctx, s.db.rebind(releaseSyncLease), userID); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// UpdateWatermark implements [SyncMetaRepository].
func (s *syncMetaRepository) UpdateWatermark(ctx context.Context, meta models.SyncMeta) error {
	log := logger.FromContext(ctx)

	res, err := s.db.conn(ctx).ExecContext(ctx, s.db.rebind(updateSyncWatermark),
		meta.LastSyncedUSN, meta.ServerUSN, meta.LastSyncAt, meta.SchemaVersion, meta.UserID)
	if err != nil {
		log.Err(err).
			Str("func", "syncMetaRepository.UpdateWatermark").
			Int64("user_id", meta.UserID).
			Msg("failed to update sync watermark")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrSyncMetaNotFound
	}

	return nil
}
