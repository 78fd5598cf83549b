package kv_test

import (
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/bufkv/lib/driver"
	"github.com/ValentinKolb/bufkv/lib/driver/memdriver"
	"github.com/ValentinKolb/bufkv/lib/kv"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func openUnbuffered(t *testing.T) *kv.Store {
	t.Helper()
	s, err := kv.Open(memdriver.New(), &kv.Overrides{
		Cache:         ptr(0),
		WriteInterval: durPtr(0),
		JSON:          bp(true),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func openBuffered(t *testing.T, cache int) *kv.Store {
	t.Helper()
	s, err := kv.Open(memdriver.New(), &kv.Overrides{
		Cache:         ptr(cache),
		WriteInterval: durPtr(time.Hour), // effectively manual-flush only
		JSON:          bp(true),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func ptr(v int) *int                        { return &v }
func durPtr(v time.Duration) *time.Duration { return &v }
func bp(v bool) *bool                       { return &v }

func TestSetThenGetServedFromBufferBeforeFlush(t *testing.T) {
	s := openBuffered(t, 1000)

	require.NoError(t, s.Set("a", []byte(`{"x":1}`), nil))

	value, found, err := s.Get("a")
	require.NoError(t, err)
	require.True(t, found)
	require.JSONEq(t, `{"x":1}`, string(value))
}

func TestMultipleSetsCoalesceIntoOneBulkOp(t *testing.T) {
	var ops []driver.Op
	drv := &recordingDriver{Driver: memdriver.New(), onBulk: func(o []driver.Op) { ops = append(ops, o...) }}
	s, err := kv.Open(drv, &kv.Overrides{Cache: ptr(0), WriteInterval: durPtr(time.Hour), JSON: bp(true)})
	require.NoError(t, err)
	defer s.Close()

	var invoked []int
	var mu sync.Mutex
	track := func(n int) kv.Callback {
		return func(err error) {
			mu.Lock()
			defer mu.Unlock()
			require.NoError(t, err)
			invoked = append(invoked, n)
		}
	}

	require.NoError(t, s.Set("a", []byte("1"), track(1)))
	require.NoError(t, s.Set("a", []byte("2"), track(2)))
	require.NoError(t, s.Set("a", []byte("3"), track(3)))

	require.NoError(t, s.Flush())

	require.Len(t, ops, 1)
	require.Equal(t, driver.OpSet, ops[0].Type)
	require.Equal(t, []byte("3"), ops[0].Value)
	require.Equal(t, []int{1, 2, 3}, invoked)
}

func TestSetThenRemoveFlushesOneRemoveOp(t *testing.T) {
	var ops []driver.Op
	drv := &recordingDriver{Driver: memdriver.New(), onBulk: func(o []driver.Op) { ops = append(ops, o...) }}
	s, err := kv.Open(drv, &kv.Overrides{Cache: ptr(0), WriteInterval: durPtr(time.Hour), JSON: bp(true)})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("a", []byte("1"), nil))
	require.NoError(t, s.Remove("a", nil))
	require.NoError(t, s.Flush())

	require.Len(t, ops, 1)
	require.Equal(t, driver.OpRemove, ops[0].Type)
	require.Equal(t, "a", ops[0].Key)
}

func TestIdempotentFlushProducesExactlyOneNonEmptyBulk(t *testing.T) {
	var bulkCalls int
	drv := &recordingDriver{Driver: memdriver.New(), onBulk: func(o []driver.Op) { bulkCalls++ }}
	s, err := kv.Open(drv, &kv.Overrides{Cache: ptr(0), WriteInterval: durPtr(time.Hour), JSON: bp(true)})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("a", []byte("1"), nil))
	require.NoError(t, s.Flush())
	require.NoError(t, s.Flush())

	require.Equal(t, 1, bulkCalls)
}

func TestUnbufferedRemoveCallsDriverRemoveNotSet(t *testing.T) {
	var removed, set bool
	drv := &recordingDriver{
		Driver:    memdriver.New(),
		onRemove:  func(string) { removed = true },
		onSetCall: func(string, []byte) { set = true },
	}
	s, err := kv.Open(drv, &kv.Overrides{Cache: ptr(0), WriteInterval: durPtr(0), JSON: bp(true)})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("a", nil, nil))
	require.True(t, removed)
	require.False(t, set)
}

func TestJSONRoundTrip(t *testing.T) {
	s := openBuffered(t, 1000)

	type payload struct {
		Name string `json:"name"`
		N    int    `json:"n"`
	}
	in := payload{Name: "hi", N: 42}

	require.NoError(t, s.SetJSON("k", in, nil))
	require.NoError(t, s.Flush())

	var out payload
	found, err := s.GetJSON("k", &out)
	require.NoError(t, err)
	require.True(t, found)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round-tripped payload mismatch (-want +got):\n%s", diff)
	}
}

func TestSetSubThenGetSub(t *testing.T) {
	s := openBuffered(t, 1000)

	require.NoError(t, s.Set("k", []byte(`{"a":{"b":1,"c":2}}`), nil))
	require.NoError(t, s.SetSub("k", []string{"a", "b"}, []byte("42"), nil))
	require.NoError(t, s.Flush())

	value, found, err := s.GetSub("k", []string{"a", "b"})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "42", string(value))

	whole, _, err := s.Get("k")
	require.NoError(t, err)
	require.JSONEq(t, `{"a":{"b":42,"c":2}}`, string(whole))
}

func TestSetSubMissingPrefixFails(t *testing.T) {
	s := openBuffered(t, 1000)
	require.NoError(t, s.Set("k", []byte(`{"a":1}`), nil))

	err := s.SetSub("k", []string{"x", "y"}, []byte("1"), nil)
	require.Error(t, err)

	var kvErr *kv.Error
	require.ErrorAs(t, err, &kvErr)
	require.Equal(t, kv.ErrCodePath, kvErr.Code)
}

func TestCacheZeroWriteIntervalZeroBufferStaysEmpty(t *testing.T) {
	s := openUnbuffered(t)

	require.NoError(t, s.Set("a", []byte("1"), nil))
	_, _, err := s.Get("a")
	require.NoError(t, err)

	require.Equal(t, 0, s.BufferLen())
}

func TestGCEvictsHalfOfCleanEntriesWhenOverCache(t *testing.T) {
	drv := memdriver.New()
	require.NoError(t, drv.Init())
	require.NoError(t, drv.Set("x", []byte(`"X"`)))
	require.NoError(t, drv.Set("y", []byte(`"Y"`)))
	require.NoError(t, drv.Set("z", []byte(`"Z"`)))

	s, err := kv.Open(drv, &kv.Overrides{Cache: ptr(2), WriteInterval: durPtr(time.Hour), JSON: bp(true)})
	require.NoError(t, err)
	defer s.Close()

	for _, k := range []string{"x", "y", "z"} {
		_, _, err := s.Get(k)
		require.NoError(t, err)
	}

	require.LessOrEqual(t, s.BufferLen(), 2)
}

// recordingDriver wraps a driver.Driver and invokes hooks on each call, for
// asserting on what the wrapper actually submitted.
type recordingDriver struct {
	driver.Driver
	onBulk    func([]driver.Op)
	onRemove  func(string)
	onSetCall func(string, []byte)
}

func (d *recordingDriver) DoBulk(ops []driver.Op) error {
	if d.onBulk != nil {
		d.onBulk(ops)
	}
	return d.Driver.DoBulk(ops)
}

func (d *recordingDriver) Remove(key string) error {
	if d.onRemove != nil {
		d.onRemove(key)
	}
	return d.Driver.Remove(key)
}

func (d *recordingDriver) Set(key string, value []byte) error {
	if d.onSetCall != nil {
		d.onSetCall(key, value)
	}
	return d.Driver.Set(key, value)
}
