// Package memdriver implements an in-memory driver.Driver backed by a
// github.com/puzpuzpuz/xsync/v3 concurrent map. It is used by the driver
// conformance suite (lib/driver/testing) and by bufkv's CLI when --db is
// ":memory:", where a throwaway store is wanted without touching SQLite at
// all.
package memdriver
