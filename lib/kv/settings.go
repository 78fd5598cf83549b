package kv

import "time"

// Settings configures the caching and write-buffering behavior of a Store.
// Settings are frozen once Open returns.
type Settings struct {
	// Cache is the maximum number of resident clean (non-dirty) entries
	// before GC evicts the oldest half. Cache == 0 disables caching of
	// clean reads entirely: every non-dirty Get round-trips the driver.
	Cache int

	// WriteInterval is the time between periodic flushes. WriteInterval
	// == 0 disables write buffering: every Set/Remove goes straight to
	// the driver, synchronously.
	WriteInterval time.Duration

	// JSON controls whether values are validated as JSON at the driver
	// boundary (SetJSON/GetJSON always (de)serialize regardless; this
	// flag governs Set/Get's raw-bytes contract).
	JSON bool
}

// DefaultSettings are used when neither the driver nor the caller supplies
// an override for a given field.
var DefaultSettings = Settings{
	Cache:         1000,
	WriteInterval: 100 * time.Millisecond,
	JSON:          true,
}

// Overrides holds caller-supplied Settings overrides for Open. Every field
// is a pointer so "unset" (defer to the driver's/package's default) can be
// distinguished from "explicitly set to the zero value" — a plain Settings
// value cannot make that distinction since 0/false are themselves
// meaningful settings (e.g. Cache: 0 to disable caching even though the
// driver suggests otherwise).
type Overrides struct {
	Cache         *int
	WriteInterval *time.Duration
	JSON          *bool
}

// apply returns a copy of s with every explicitly-set field of o applied on
// top. A nil Overrides, or a nil field within it, leaves the corresponding
// field of s unchanged.
func (s Settings) apply(o *Overrides) Settings {
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
