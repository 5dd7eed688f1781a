package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/flashdeck/flashdeck/internal/logger"
	"github.com/flashdeck/flashdeck/models"
)

// entityRepository is the shared implementation behind every
// [EntityRepository]. One instance serves one entity table, described by
// its [tableSpec]. All methods join an open transaction when the context
// carries one.
type entityRepository[T models.Syncable] struct {
	db     *DB
	spec   tableSpec[T]
	logger *logger.Logger
}

func NewDeckRepository(db *DB, log *logger.Logger) EntityRepository[models.Deck] {
	return &entityRepository[models.Deck]{db: db, spec: deckTable, logger: log}
}

func NewTagRepository(db *DB, log *logger.Logger) EntityRepository[models.Tag] {
	return &entityRepository[models.Tag]{db: db, spec: tagTable, logger: log}
}

func NewNoteTypeRepository(db *DB, log *logger.Logger) EntityRepository[models.NoteType] {
	return &entityRepository[models.NoteType]{db: db, spec: noteTypeTable, logger: log}
}

func NewNoteRepository(db *DB, log *logger.Logger) EntityRepository[models.Note] {
	return &entityRepository[models.Note]{db: db, spec: noteTable, logger: log}
}

func NewCardRepository(db *DB, log *logger.Logger) EntityRepository[models.Card] {
	return &entityRepository[models.Card]{db: db, spec: cardTable, logger: log}
}

func NewMediaRefRepository(db *DB, log *logger.Logger) EntityRepository[models.MediaRef] {
	return &entityRepository[models.MediaRef]{db: db, spec: mediaRefTable, logger: log}
}

// Upsert inserts the entity or, when a row with the same id already exists,
// overwrites every non-id column with the incoming values. The overwrite is
// a single merge statement, which is what makes applying the same remote
// changeset twice converge on the same state.
func (e *entityRepository[T]) Upsert(ctx context.Context, entity T) error {
	log := logger.FromContext(ctx)

	query, args, err := e.db.sq.
		Insert(e.spec.table).
		Columns(e.spec.columns...).
		Values(e.spec.values(entity)...).
		Suffix(e.upsertClause()).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = e.db.conn(ctx).ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "entityRepository.Upsert").
			Str("table", e.spec.table).
			Str("entity_id", entity.Key()).
			Int64("user_id", entity.Owner()).
			Msg("failed to upsert entity")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// upsertClause builds the ON CONFLICT merge for every non-id column.
// Both PostgreSQL and SQLite accept the EXCLUDED form.
func (e *entityRepository[T]) upsertClause() string {
	assignments := make([]string, 0, len(e.spec.columns)-1)
	for _, col := range e.spec.columns {
		if col == "id" {
			continue
		}
		assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}

	return "ON CONFLICT (id) DO UPDATE SET " + strings.Join(assignments, ", ")
}

// SelectByIDs fetches the current rows for the given id list in one batch
// query. Ids with no current row are simply absent from the result.
func (e *entityRepository[T]) SelectByIDs(ctx context.Context, userID int64, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := e.db.sq.
		Select(e.spec.columns...).
		From(e.spec.table).
		Where(squirrel.Eq{"user_id": userID, "id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return e.selectMany(ctx, query, args)
}

// SelectAllByUser fetches every row the user owns, ordered by id for
// deterministic snapshots.
func (e *entityRepository[T]) SelectAllByUser(ctx context.Context, userID int64) ([]T, error) {
	query, args, err := e.db.sq.
		Select(e.spec.columns...).
		From(e.spec.table).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return e.selectMany(ctx, query, args)
}

func (e *entityRepository[T]) selectMany(ctx context.Context, query string, args []any) ([]T, error) {
	log := logger.FromContext(ctx)

	rows, err := e.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "entityRepository.selectMany").
			Str("table", e.spec.table).
			Msg("failed to execute select query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		entity, scanErr := e.spec.scan(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "entityRepository.selectMany").
				Str("table", e.spec.table).
				Msg("failed to scan entity row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		results = append(results, entity)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return results, nil
}

// DeleteByID removes one row. Deleting an absent row is not an error: the
// sync engine treats remote deletes of already-gone entities as applied.
func (e *entityRepository[T]) DeleteByID(ctx context.Context, userID int64, id string) error {
	query, args, err := e.db.sq.
		Delete(e.spec.table).
		Where(squirrel.Eq{"user_id": userID, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = e.db.conn(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// DeleteAllByUser removes every row the user owns. Used by the full
// download reset; callers are responsible for reverse-dependency ordering
// across tables.
func (e *entityRepository[T]) DeleteAllByUser(ctx context.Context, userID int64) error {
	query, args, err := e.db.sq.
		Delete(e.spec.table).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = e.db.conn(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
