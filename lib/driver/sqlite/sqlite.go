package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ValentinKolb/bufkv/lib/driver"
	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" database/sql driver
)

const (
	inMemoryDSN = ":memory:"

	createTableStmt = `CREATE TABLE IF NOT EXISTS store (key TEXT PRIMARY KEY, value TEXT)`
	getStmt         = `SELECT value FROM store WHERE key = ?`
	setStmt         = `INSERT INTO store(key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	removeStmt      = `DELETE FROM store WHERE key = ?`
)

// Options configures Open.
type Options struct {
	// Path is the SQLite filename, or ":memory:" for an ephemeral
	// in-memory database.
	Path string
}

// sqliteDriver implements driver.Driver over an embedded SQLite database.
type sqliteDriver struct {
	path string
	db   *sql.DB
}

// Open creates a (not yet initialized) SQLite-backed driver.Driver for the
// given path. Call Init before using it.
//
// Thread-safety: Init must complete before any other method is called
// concurrently; once initialized all methods are safe for concurrent use
// (database/sql pools its own connections).
func Open(opts Options) driver.Driver {
	return &sqliteDriver{path: opts.Path}
}

// --------------------------------------------------------------------------
// Interface Methods (docs see driver.Driver)
// --------------------------------------------------------------------------

func (d *sqliteDriver) Init() error {
	db, err := sql.Open("sqlite3", d.path)
	if err != nil {
		return fmt.Errorf("sqlite: open %q: %w", d.path, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("sqlite: ping %q: %w", d.path, err)
	}

	if d.path != inMemoryDSN {
		if err := applyPragmas(db); err != nil {
			_ = db.Close()
			return err
		}
	}

	if _, err := db.Exec(createTableStmt); err != nil {
		_ = db.Close()
		return fmt.Errorf("sqlite: create table: %w", err)
	}

	d.db = db
	return nil
}

// applyPragmas tunes a file-backed database for the wrapper's access
// pattern: one bulk write per flush cycle, many concurrent reads.
func applyPragmas(db *sql.DB) error {
	for _, stmt := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("sqlite: apply pragma %q: %w", stmt, err)
		}
	}
	return nil
}

func (d *sqliteDriver) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := d.db.QueryRow(getStmt, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: get %q: %w", key, err)
	}
	return value, true, nil
}

func (d *sqliteDriver) Set(key string, value []byte) error {
	if _, err := d.db.Exec(setStmt, key, value); err != nil {
		return fmt.Errorf("sqlite: set %q: %w", key, err)
	}
	return nil
}

func (d *sqliteDriver) Remove(key string) error {
	if _, err := d.db.Exec(removeStmt, key); err != nil {
		return fmt.Errorf("sqlite: remove %q: %w", key, err)
	}
	return nil
}

func (d *sqliteDriver) DoBulk(ops []driver.Op) error {
	if len(ops) == 0 {
		return nil
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: begin bulk: %w", err)
	}

	for _, op := range ops {
		switch op.Type {
		case driver.OpSet:
			if _, err := tx.Exec(setStmt, op.Key, op.Value); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("sqlite: bulk set %q: %w", op.Key, err)
			}
		case driver.OpRemove:
			if _, err := tx.Exec(removeStmt, op.Key); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("sqlite: bulk remove %q: %w", op.Key, err)
			}
		default:
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: bulk: unknown op type %v", op.Type)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit bulk: %w", err)
	}
	return nil
}

func (d *sqliteDriver) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *sqliteDriver) DefaultSettings() *driver.Settings {
	if d.path == inMemoryDSN {
		return &driver.Settings{
			Cache:         0,
			WriteInterval: 0,
			JSON:          true,
		}
	}
	return &driver.Settings{
		Cache:         1000,
		WriteInterval: 100 * time.Millisecond,
		JSON:          true,
	}
}
