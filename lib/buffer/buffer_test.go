package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadMissing(t *testing.T) {
	b := New()
	_, _, ok := b.Read("missing", true, 1)
	require.False(t, ok)
}

func TestInsertCleanThenRead(t *testing.T) {
	b := New()
	require.True(t, b.InsertClean("a", []byte("1"), 1))
	require.Equal(t, 1, b.Len())
	require.Equal(t, 1, b.CleanLen())

	value, dirty, ok := b.Read("a", true, 2)
	require.True(t, ok)
	require.False(t, dirty)
	require.Equal(t, []byte("1"), value)
}

func TestReadWithCacheDisabledHidesCleanEntries(t *testing.T) {
	b := New()
	b.InsertClean("a", []byte("1"), 1)

	_, _, ok := b.Read("a", false, 2)
	require.False(t, ok, "a clean entry must not be visible when caching is disabled")
}

func TestWriteMakesEntryDirtyAndVisibleEvenWithCacheDisabled(t *testing.T) {
	b := New()
	var gotErr error
	b.Write("a", []byte("1"), 1, func(err error) { gotErr = err })

	value, dirty, ok := b.Read("a", false, 2)
	require.True(t, ok, "dirty entries are read-your-writes visible regardless of cache setting")
	require.True(t, dirty)
	require.Equal(t, []byte("1"), value)
	require.Equal(t, 1, b.Len())
	require.Equal(t, 0, b.CleanLen(), "dirty entries are never in the clean eviction heap")
	require.Nil(t, gotErr)
}

func TestWriteOnExistingCleanEntryRemovesItFromCleanHeap(t *testing.T) {
	b := New()
	b.InsertClean("a", []byte("1"), 1)
	require.Equal(t, 1, b.CleanLen())

	b.Write("a", []byte("2"), 2, nil)
	require.Equal(t, 0, b.CleanLen())
	require.Equal(t, 1, b.Len(), "writing an existing key must not change the live count")
}

func TestEvictOldestCleanSkipsDirty(t *testing.T) {
	b := New()
	b.InsertClean("old", []byte("1"), 1)
	b.InsertClean("new", []byte("2"), 2)
	b.Write("dirty", []byte("3"), 3, nil)

	evicted := b.EvictOldestClean(2)
	require.Equal(t, 2, evicted)

	_, _, ok := b.Read("old", true, 4)
	require.False(t, ok, "oldest clean entry should be gone")
	_, _, ok = b.Read("new", true, 4)
	require.False(t, ok, "second-oldest clean entry should be gone too")
	_, dirty, ok := b.Read("dirty", true, 4)
	require.True(t, ok, "dirty entry must survive eviction")
	require.True(t, dirty)
}

func TestEvictOldestCleanCapsAtAvailable(t *testing.T) {
	b := New()
	b.InsertClean("a", []byte("1"), 1)

	evicted := b.EvictOldestClean(10)
	require.Equal(t, 1, evicted)
	require.Equal(t, 0, b.Len())
}

func TestDrainDirtyClearsDirtyAndReturnsCallbacksInOrder(t *testing.T) {
	b := New()
	var order []int
	b.Write("a", []byte("1"), 1, func(error) { order = append(order, 1) })
	b.Write("a", []byte("2"), 1, func(error) { order = append(order, 2) })

	drained := b.DrainDirty(5)
	require.Len(t, drained, 1)
	require.Equal(t, "a", drained[0].Key)
	require.Equal(t, []byte("2"), drained[0].Value)
	require.Len(t, drained[0].Callbacks, 2)

	for _, cb := range drained[0].Callbacks {
		cb(nil)
	}
	require.Equal(t, []int{1, 2}, order)

	_, dirty, ok := b.Read("a", true, 6)
	require.True(t, ok)
	require.False(t, dirty, "entry must be clean immediately after draining")
}

func TestWriteDuringDrainedBulkReDirtiesEntry(t *testing.T) {
	b := New()
	b.Write("a", []byte("1"), 1, nil)
	b.DrainDirty(2)

	// A new write arrives while the (now in-flight) bulk is still running.
	b.Write("a", []byte("2"), 3, nil)

	_, dirty, ok := b.Read("a", true, 4)
	require.True(t, ok)
	require.True(t, dirty, "a write during an in-flight bulk must re-dirty the entry")
}

func TestReMarkDirtyRestoresEvictedEntryOnFailure(t *testing.T) {
	b := New()
	b.Write("a", []byte("1"), 1, nil)
	drained := b.DrainDirty(2)
	require.Len(t, drained, 1)

	// Simulate a GC eviction racing in between drain and the bulk failing.
	b.EvictOldestClean(1)
	_, _, ok := b.Read("a", true, 3)
	require.False(t, ok)

	b.ReMarkDirty("a", drained[0].Value, 4)

	value, dirty, ok := b.Read("a", true, 5)
	require.True(t, ok)
	require.True(t, dirty)
	require.Equal(t, []byte("1"), value)
}

func TestReMarkDirtyDoesNotClobberNewerWrite(t *testing.T) {
	b := New()
	b.Write("a", []byte("1"), 1, nil)
	drained := b.DrainDirty(2)

	// A newer write landed before the failure was observed.
	b.Write("a", []byte("2"), 3, nil)

	b.ReMarkDirty("a", drained[0].Value, 4)

	value, _, _ := b.Read("a", true, 5)
	require.Equal(t, []byte("2"), value, "the newer write must win over the stale pre-failure value")
}
