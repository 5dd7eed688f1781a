// Package store implements the persistence layer of the sync engine: the
// entity repositories, the append-only change ledger, and the per-user sync
// watermark, over either PostgreSQL (pgx) or SQLite (mattn/go-sqlite3).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/flashdeck/flashdeck/internal/config"
	"github.com/flashdeck/flashdeck/internal/logger"
	"github.com/flashdeck/flashdeck/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect identifies which SQL backend a DB connection talks to.
type Dialect string

const (
	DialectPostgres Dialect = "pgx"
	DialectSQLite   Dialect = "sqlite3"
)

// DB wraps a database/sql connection with the dialect-aware statement
// builder and error classifier the repositories share.
type DB struct {
	*sql.DB
	dialect            Dialect
	sq                 squirrel.StatementBuilderType
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// NewConnect opens a database connection for the configured driver,
// verifies it with a ping, and returns a ready *DB.
func NewConnect(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	switch Dialect(cfg.Driver) {
	case DialectPostgres:
		return NewConnectPostgres(ctx, cfg, log)
	case DialectSQLite:
		return NewConnectSQLite(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewConnectPostgres opens a PostgreSQL connection via the pgx stdlib
// driver with dollar placeholders and the Postgres error classifier.
func NewConnectPostgres(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	conn, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		log.Err(err).Str("func", "NewConnectPostgres").Msg("error occurred during database connection")
		return nil, fmt.Errorf("error occurred during database connection: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(4)

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewConnectPostgres").Msg("error connecting database (ping)")
		return nil, err
	}
	log.Info().Str("func", "NewConnectPostgres").Msg("connected to database successfully")

	return &DB{
		DB:                 conn,
		dialect:            DialectPostgres,
		sq:                 squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		errorClassificator: NewPostgresErrorClassifier(),
		logger:             log,
	}, nil
}

// NewConnectSQLite opens a SQLite connection. SQLite serializes writers per
// connection, so the pool is capped at a single open connection.
func NewConnectSQLite(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error occurred during database connection")
		return nil, fmt.Errorf("error occurred during database connection: %w", err)
	}

	conn.SetMaxOpenConns(1)

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database (ping)")
		return nil, err
	}
	log.Info().Str("func", "NewConnectSQLite").Msg("connected to database successfully")

	return &DB{
		DB:                 conn,
		dialect:            DialectSQLite,
		sq:                 squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		errorClassificator: NewNopErrorClassifier(),
		logger:             log,
	}, nil
}

// Migrate applies the embedded goose migrations matching the DB's dialect.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, migrations.Dialect(db.dialect))
}

// rebind rewrites ?-style placeholders in a handwritten query into the form
// the connected dialect expects.
func (db *DB) rebind(query string) string {
	if db.dialect != DialectPostgres {
		return query
	}

	rebound, err := squirrel.Dollar.ReplacePlaceholders(query)
	if err != nil {
		// ReplacePlaceholders only fails on malformed escape sequences,
		// which handwritten queries in this package do not use.
		return query
	}
	return rebound
}

// querier is the subset of database/sql operations the repositories need.
// Both *sql.DB and *sql.Tx satisfy it, which lets every repository method
// run either standalone or inside a transaction opened by
// [DB.WithinTransaction].
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txCtxKey struct{}

// conn returns the transaction carried by ctx when one is open, otherwise
// the shared connection pool.
func (db *DB) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txCtxKey{}).(*sql.Tx); ok {
		return tx
	}
	return db.DB
}

// WithinTransaction runs fn inside one database transaction. The
// transaction is attached to the context given to fn, so every repository
// call made with that context joins it. A nested call reuses the already
// open transaction instead of starting a second one.
func (db *DB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txCtxKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}

	if err = fn(context.WithValue(ctx, txCtxKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("%w: %w", ErrRollingBackTransaction, rbErr))
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommittingTransaction, err)
	}

	return nil
}
