package buffer

import "sync"

// Buffer is the in-memory entry table lib/kv caches and coalesces writes
// through. It owns one sync.Mutex held across every map/heap mutation, and
// never held across driver I/O — callers in lib/kv lock only for the
// duration of a single Buffer method call.
type Buffer struct {
	mu      sync.Mutex
	entries map[string]*Entry
	clean   *cleanHeap // holds only entries with Dirty == false
	count   int        // live entries; incremented on true insertion only
}

// New creates an empty Buffer.
func New() *Buffer {
	return &Buffer{
		entries: make(map[string]*Entry),
		clean:   newCleanHeap(),
	}
}

// Len returns the number of live (resident) entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// CleanLen returns the number of resident entries that are currently clean
// (eviction candidates).
func (b *Buffer) CleanLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clean.Len()
}

// Read looks up key and, if found and visible under the given caching
// policy, refreshes its touch time and returns a copy of its value.
// cacheEnabled should be Settings.Cache > 0; a dirty entry is always
// visible regardless of cacheEnabled, to preserve read-your-writes.
func (b *Buffer) Read(key string, cacheEnabled bool, now int64) (value []byte, dirty bool, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, exists := b.entries[key]
	if !exists {
		return nil, false, false
	}
	if !cacheEnabled && !e.Dirty {
		return nil, false, false
	}

	e.Touched = now
	if !e.Dirty {
		b.clean.upsert(key, now)
	}
	return e.clone(), e.Dirty, true
}

// InsertClean adds a freshly loaded (from the driver) clean entry for key.
// If an entry for key already appeared concurrently, inserted reports
// false: a clean entry has its value and touch time refreshed, and a dirty
// entry is left unchanged so the pending write wins.
func (b *Buffer) InsertClean(key string, value []byte, now int64) (inserted bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if e, exists := b.entries[key]; exists {
		if !e.Dirty {
			e.Value = value
			e.Touched = now
			b.clean.upsert(key, now)
		}
		return false
	}

	e := &Entry{Value: value, Dirty: false, Touched: now}
	b.entries[key] = e
	b.count++
	b.clean.upsert(key, now)
	return true
}

// Write creates or updates the entry for key as dirty, appending cb (if
// non-nil) to its pending callbacks. Used by the buffered Set/Remove path
// (Settings.WriteInterval > 0).
func (b *Buffer) Write(key string, value []byte, now int64, cb Callback) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, exists := b.entries[key]
	if !exists {
		e = &Entry{}
		b.entries[key] = e
		b.count++
	} else if !e.Dirty {
		b.clean.remove(key)
	}

	e.Value = value
	e.Dirty = true
	e.Touched = now
	if cb != nil {
		e.Callbacks = append(e.Callbacks, cb)
	}
}

// EvictOldestClean removes up to n of the oldest clean entries and reports
// how many were actually evicted (the clean set may hold fewer than n).
// Dirty entries are never candidates: they are not tracked in the clean
// heap at all.
func (b *Buffer) EvictOldestClean(n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	evicted := 0
	for evicted < n {
		key, ok := b.clean.popOldest()
		if !ok {
			break
		}
		delete(b.entries, key)
		b.count--
		evicted++
	}
	return evicted
}

// DrainedEntry is one dirty entry pulled out of the buffer by DrainDirty for
// the flush engine to translate into a driver.Op.
type DrainedEntry struct {
	Key       string
	Value     []byte
	Callbacks []Callback
}

// DrainDirty collects every currently-dirty entry, clears its dirty flag and
// callback queue, and moves it into the clean heap with touch time now.
// Clearing dirty happens before the caller's bulk call returns: a Write
// that arrives afterward naturally re-dirties the entry via Write's
// clean.remove/Dirty=true path, so it is not lost and not double-flushed.
func (b *Buffer) DrainDirty(now int64) []DrainedEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []DrainedEntry
	for key, e := range b.entries {
		if !e.Dirty {
			continue
		}
		out = append(out, DrainedEntry{Key: key, Value: e.clone(), Callbacks: e.Callbacks})
		e.Dirty = false
		e.Callbacks = nil
		e.Touched = now
		b.clean.upsert(key, now)
	}
	return out
}

// ReMarkDirty restores key to the dirty state with value, unless the entry
// has already been re-written (and is therefore already dirty again) since
// it was drained — in which case the newer write must win and this is a
// no-op. Used by the flush engine's failure path ("keep dirty on bulk
// failure" instead of dropping the write) to recover entries a concurrent
// GC evicted out from under a failed bulk.
func (b *Buffer) ReMarkDirty(key string, value []byte, now int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, exists := b.entries[key]
	if !exists {
		e = &Entry{}
		b.entries[key] = e
		b.count++
	} else if e.Dirty {
		return
	} else {
		b.clean.remove(key)
	}

	e.Value = value
	e.Dirty = true
	e.Touched = now
}
