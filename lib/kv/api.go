package kv

import (
	"bytes"
	"encoding/json"
	"log"
)

// Get returns the value for key. A cache hit (clean, when Settings.Cache >
// 0, or dirty regardless of Settings.Cache) is served directly from the
// buffer; otherwise the driver is consulted, the result decoded (when
// Settings.JSON) and — if caching is enabled — inserted as a clean entry
// before GC runs. found is false if key does not exist or was removed: a
// nil value always reports as not found.
func (s *Store) Get(key string) (value []byte, found bool, err error) {
	if v, _, ok := s.buf.Read(key, s.settings.Cache > 0, now()); ok {
		s.metrics.cacheHits.Inc()
		if v == nil {
			return nil, false, nil
		}
		return v, true, nil
	}
	s.metrics.cacheMisses.Inc()

	raw, ok, err := s.drv.Get(key)
	if err != nil {
		return nil, false, newError(ErrCodeDriver, "get failed", err)
	}
	if !ok {
		return nil, false, nil
	}

	decoded := raw
	if s.settings.JSON {
		if !json.Valid(raw) {
			return nil, false, newError(ErrCodeDecode, "value is not valid JSON", nil)
		}
		// A JSON "null" at the driver layer means "deleted"; normalize it
		// to the in-memory nil marker so reads and caching behave
		// identically to an explicit Remove.
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			decoded = nil
		}
	}

	if s.settings.Cache > 0 {
		s.buf.InsertClean(key, decoded, now())
		s.runGC()
	}

	if decoded == nil {
		return nil, false, nil
	}
	return decoded, true, nil
}

// Set stores value for key. A nil value is a delete, identical to calling
// Remove: remove(k, cb) is exactly set(k, nil, cb).
//
// If Settings.WriteInterval > 0, the write is buffered: it returns
// immediately and cb fires later from the next flush. If WriteInterval ==
// 0, the write goes straight to the driver and cb fires synchronously
// before Set returns.
func (s *Store) Set(key string, value []byte, cb Callback) error {
	if value == nil {
		return s.Remove(key, cb)
	}

	if s.settings.WriteInterval > 0 {
		s.buf.Write(key, value, now(), wrapCallback(cb))
		s.runGC()
		return nil
	}

	err := s.drv.Set(key, value)
	if err != nil {
		err = newError(ErrCodeDriver, "set failed", err)
	}
	invoke(cb, err)
	return err
}

// Remove deletes key. A missing key is not an error. Same
// buffered-vs-synchronous split as Set.
func (s *Store) Remove(key string, cb Callback) error {
	if s.settings.WriteInterval > 0 {
		s.buf.Write(key, nil, now(), wrapCallback(cb))
		s.runGC()
		return nil
	}

	err := s.drv.Remove(key)
	if err != nil {
		err = newError(ErrCodeDriver, "remove failed", err)
	}
	invoke(cb, err)
	return err
}

// SetJSON marshals v with encoding/json and stores the result via Set.
func (s *Store) SetJSON(key string, v any, cb Callback) error {
	raw, err := json.Marshal(v)
	if err != nil {
		err = newError(ErrCodeDecode, "marshal failed", err)
		invoke(cb, err)
		return err
	}
	return s.Set(key, raw, cb)
}

// GetJSON fetches key via Get and unmarshals it into out. found is false
// (and out is left untouched) if the key does not exist.
func (s *Store) GetJSON(key string, out any) (found bool, err error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, newError(ErrCodeDecode, "unmarshal failed", err)
	}
	return true, nil
}

// invoke calls cb with err if cb is non-nil. A nil callback on a
// synchronous Set/Remove means "fire and forget": the error, if any, is
// still returned to the caller directly, so nothing is silently lost.
func invoke(cb Callback, err error) {
	if cb != nil {
		cb(err)
	}
}

// wrapCallback adapts a possibly-nil caller callback into one that is
// always safe to append to an entry's pending callback queue. A caller
// that supplies no callback on a buffered write gets one that logs the
// error through the standard logger instead of silently dropping it.
func wrapCallback(cb Callback) Callback {
	if cb != nil {
		return cb
	}
	return func(err error) {
		if err != nil {
			log.Printf("bufkv: unobserved write error: %v", err)
		}
	}
}
