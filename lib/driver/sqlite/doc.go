// Package sqlite implements the reference driver.Driver backend over a
// local embedded SQLite database, using database/sql and the
// github.com/mattn/go-sqlite3 driver.
//
// Schema:
//
//	CREATE TABLE IF NOT EXISTS store (key TEXT PRIMARY KEY, value TEXT)
//
// Every statement is parameterized; no value or key is ever interpolated
// into SQL text.
package sqlite
