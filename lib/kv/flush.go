package kv

import (
	"log"
	"time"

	"github.com/ValentinKolb/bufkv/lib/driver"
	"github.com/google/uuid"
)

// Flush drains every dirty entry into one driver.DoBulk call and fans the
// result back out to every pending callback, in the order the entries were
// enumerated. Calling Flush with nothing dirty is a no-op that still
// returns nil: two consecutive Flush calls with no intervening mutation
// produce exactly one non-empty DoBulk.
//
// Flush is safe to call concurrently with itself (from the periodic
// ticker, an explicit caller, and gc.go's all-dirty escape hatch): flushMu
// serializes the collect-and-submit cycle so two bulks never race.
func (s *Store) Flush() error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	drained := s.buf.DrainDirty(now())
	if len(drained) == 0 {
		return nil
	}

	ops := make([]driver.Op, 0, len(drained))
	for _, d := range drained {
		if d.Value == nil {
			ops = append(ops, driver.Op{Type: driver.OpRemove, Key: d.Key})
		} else {
			ops = append(ops, driver.Op{Type: driver.OpSet, Key: d.Key, Value: d.Value})
		}
	}

	id := uuid.New()
	start := time.Now()
	log.Printf("bufkv: flush %s: applying %d op(s)", id, len(ops))

	bulkErr := s.drv.DoBulk(ops)

	s.metrics.flushTotal.Inc()
	s.metrics.flushDur.Update(time.Since(start).Seconds())

	var reported error
	if bulkErr != nil {
		reported = newError(ErrCodeDriver, "bulk flush failed", bulkErr)
		s.metrics.flushErrors.Inc()
		log.Printf("bufkv: flush %s: failed: %v", id, bulkErr)

		// Keep the entry dirty so the next periodic tick retries it,
		// instead of silently dropping the pending write. Callbacks still
		// fire once with the error, below, so callers are not left hanging.
		retryAt := now()
		for _, d := range drained {
			s.buf.ReMarkDirty(d.Key, d.Value, retryAt)
		}
	} else {
		log.Printf("bufkv: flush %s: ok", id)
	}

	for _, d := range drained {
		for _, cb := range d.Callbacks {
			cb(reported)
		}
	}

	return reported
}
