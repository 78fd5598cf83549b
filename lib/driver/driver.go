package driver

import "time"

// --------------------------------------------------------------------------
// Settings
// --------------------------------------------------------------------------

// Settings configures the caching and write-buffering behavior of a
// lib/kv.Store. Settings are frozen once a Store is opened.
type Settings struct {
	// Cache is the maximum number of resident clean (non-dirty) entries
	// before GC evicts the oldest half. Cache == 0 disables caching of
	// clean reads entirely.
	Cache int

	// WriteInterval is the time between periodic flushes. WriteInterval
	// == 0 disables write buffering: every Set/Remove goes straight to
	// the driver.
	WriteInterval time.Duration

	// JSON controls whether values are validated/round-tripped as JSON at
	// the driver boundary. When false, values are treated as opaque bytes.
	JSON bool
}

// Overrides holds caller-supplied Settings overrides, applied with
// Settings.Apply. (lib/kv.Open takes lib/kv's own Overrides type, which has
// the same fields.) Every field is a pointer so that "unset" (defer to the driver's default) can be
// distinguished from "explicitly set to the zero value" (e.g. Cache: 0 to
// disable caching even though the driver suggests otherwise) — a plain
// Settings value cannot make that distinction since 0/false are themselves
// meaningful settings.
type Overrides struct {
	Cache         *int
	WriteInterval *time.Duration
	JSON          *bool
}

// Apply returns a copy of s with every explicitly-set field of o applied on
// top. A nil Overrides, or a nil field within it, leaves the corresponding
// field of s unchanged.
func (s Settings) Apply(o *Overrides) Settings {
	if o == nil {
		return s
	}
	merged := s
	if o.Cache != nil {
		merged.Cache = *o.Cache
	}
	if o.WriteInterval != nil {
		merged.WriteInterval = *o.WriteInterval
	}
	if o.JSON != nil {
		merged.JSON = *o.JSON
	}
	return merged
}

// --------------------------------------------------------------------------
// Bulk operations
// --------------------------------------------------------------------------

// OpType identifies the kind of mutation a Op represents.
type OpType int

const (
	// OpSet upserts Key with Value.
	OpSet OpType = iota
	// OpRemove deletes Key. Removing a missing key is not an error.
	OpRemove
)

func (t OpType) String() string {
	switch t {
	case OpSet:
		return "set"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Op is a single mutation inside a bulk operation. Value is nil for
// OpRemove.
type Op struct {
	Type  OpType
	Key   string
	Value []byte
}

// --------------------------------------------------------------------------
// Driver Interface
// --------------------------------------------------------------------------

// Driver is the minimal contract bufkv requires of any backing store. All
// methods are synchronous; the caching and buffering layer in lib/kv is
// what gives callers a non-blocking experience.
//
// Get must never decode the stored value: it returns the exact raw bytes
// that were passed to Set (or appear after DoBulk applies a OpSet), so
// that JSON (de)serialization stays entirely the wrapper's responsibility.
type Driver interface {
	// Init prepares the backing store (schema creation, connection, ...).
	// It is called once, before any other method, by lib/kv.Open.
	Init() error

	// Get returns the raw value for key, or found == false if the key is
	// absent.
	Get(key string) (value []byte, found bool, err error)

	// Set upserts a raw value for key.
	Set(key string, value []byte) error

	// Remove deletes key. A missing key is not an error.
	Remove(key string) error

	// DoBulk applies ops atomically and in order: either every op is
	// applied, or (on error) none of them are. Drivers that cannot
	// provide atomicity must document the weakened guarantee explicitly;
	// lib/kv's correctness invariants rely on it.
	DoBulk(ops []Op) error

	// Close releases any resources held by the driver.
	Close() error

	// DefaultSettings lets a driver suggest Settings appropriate to how
	// it is configured (e.g. an in-memory SQLite driver suggests
	// unbuffered, uncached settings). It may return nil to defer entirely
	// to lib/kv's built-in defaults. Caller-supplied Settings passed to
	// lib/kv.Open always take precedence over these, field by field.
	DefaultSettings() *Settings
}
