// Package kv implements bufkv's public API: a buffered, cached key-value
// wrapper in front of a pluggable lib/driver.Driver backend. See
// lib/buffer for the entry/eviction primitives and flush.go/gc.go for the
// write-coalescing and eviction policies built on top of them.
package kv

import (
	"sync"
	"time"

	"github.com/ValentinKolb/bufkv/lib/buffer"
	"github.com/ValentinKolb/bufkv/lib/driver"
	"github.com/hashicorp/go-multierror"
)

// Callback is invoked exactly once when a Set/Remove mutation is
// acknowledged (or fails) at the backend. A nil error means the mutation
// was applied. A nil Callback is legal on Set/Remove and means "fire and
// forget": on a buffered write, an error is logged rather than escalated
// by panic (see wrapCallback in api.go).
type Callback = buffer.Callback

// Store is the public, concurrency-safe entry point: caching reads,
// coalescing writes, and a periodic flush engine sit in front of a single
// driver.Driver. A Store must be created with Open and released with
// Close.
type Store struct {
	drv      driver.Driver
	settings Settings
	buf      *buffer.Buffer
	metrics  *storeMetrics

	flushMu sync.Mutex // serializes flush cycles against each other

	tickerDone chan struct{}
	tickerWG   sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
}

// Open wires drv into a new Store. Effective Settings are computed by
// starting from DefaultSettings, applying drv.DefaultSettings() on top (if
// non-nil), then applying overrides (if non-nil) — caller-supplied
// overrides always win. Once Open returns, Settings are frozen for the
// lifetime of the Store.
func Open(drv driver.Driver, overrides *Overrides) (*Store, error) {
	if drv == nil {
		return nil, newError(ErrCodeConfig, "driver is nil", nil)
	}

	if err := drv.Init(); err != nil {
		return nil, newError(ErrCodeDriver, "driver init failed", err)
	}

	settings := DefaultSettings
	if ds := drv.DefaultSettings(); ds != nil {
		settings = Settings{
			Cache:         ds.Cache,
			WriteInterval: ds.WriteInterval,
			JSON:          ds.JSON,
		}
	}
	settings = settings.apply(overrides)

	buf := buffer.New()
	s := &Store{
		drv:        drv,
		settings:   settings,
		buf:        buf,
		tickerDone: make(chan struct{}),
	}
	s.metrics = newStoreMetrics(buf)

	if settings.WriteInterval > 0 {
		s.startTicker()
	}

	return s, nil
}

// startTicker launches the goroutine driving the periodic flush: a timer
// firing every WriteInterval.
func (s *Store) startTicker() {
	s.tickerWG.Add(1)
	go func() {
		defer s.tickerWG.Done()
		ticker := time.NewTicker(s.settings.WriteInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = s.Flush()
			case <-s.tickerDone:
				return
			}
		}
	}()
}

// Close performs a final synchronous flush, stops the periodic ticker, and
// delegates to the driver's Close. It always flushes and always stops the
// timer before releasing the driver. Errors from the final flush and the
// driver's Close are both reported, combined with go-multierror, rather
// than one silently shadowing the other.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		if s.settings.WriteInterval > 0 {
			close(s.tickerDone)
			s.tickerWG.Wait()
		}

		var errs *multierror.Error
		if err := s.Flush(); err != nil {
			errs = multierror.Append(errs, err)
		}
		if err := s.drv.Close(); err != nil {
			errs = multierror.Append(errs, newError(ErrCodeDriver, "driver close failed", err))
		}
		s.closeErr = errs.ErrorOrNil()
	})
	return s.closeErr
}

// BufferLen reports the number of entries currently resident in the
// buffer, for diagnostics and tests.
func (s *Store) BufferLen() int {
	return s.buf.Len()
}

func now() int64 {
	return time.Now().UnixNano()
}
