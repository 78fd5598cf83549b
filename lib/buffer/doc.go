// Package buffer implements the in-memory entry model bufkv's caching and
// write-buffering layer (lib/kv) is built on: a map of keys to Entry
// records, a clean-entry eviction heap for GC, and a mutex protecting both.
//
// Nothing in this package talks to a driver.Driver or knows about JSON;
// values here are opaque bytes. lib/kv is the only caller.
package buffer
