// Package driver defines the narrow contract that bufkv requires of any
// backing store. The wrapper in lib/kv never talks to a concrete backend
// directly, only through this interface, so new backends (a different SQL
// engine, a remote HTTP store, a test double) can be added without touching
// lib/kv at all.
//
// A conformance suite for implementations of this interface lives in
// lib/driver/testing.
package driver
