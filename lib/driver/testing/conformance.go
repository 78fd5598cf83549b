package testing

import (
	"testing"
	"time"

	"github.com/ValentinKolb/bufkv/lib/driver"
	"github.com/stretchr/testify/require"
)

// Factory creates a fresh, uninitialized driver.Driver instance.
type Factory func() driver.Driver

// RunDriverTests runs the full conformance suite against a driver.Driver
// implementation produced by factory. Call it once per backend from that
// backend's own _test.go file.
func RunDriverTests(t *testing.T, name string, factory Factory) {
	t.Run(name, func(t *testing.T) {
		t.Run("SetGet", func(t *testing.T) { testSetGet(t, factory()) })
		t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, factory()) })
		t.Run("Remove", func(t *testing.T) { testRemove(t, factory()) })
		t.Run("RemoveMissingIsNotError", func(t *testing.T) { testRemoveMissing(t, factory()) })
		t.Run("Overwrite", func(t *testing.T) { testOverwrite(t, factory()) })
		t.Run("DoBulkOrdered", func(t *testing.T) { testDoBulk(t, factory()) })
		t.Run("DoBulkEmpty", func(t *testing.T) { testDoBulkEmpty(t, factory()) })
		t.Run("DefaultSettings", func(t *testing.T) { testDefaultSettings(t, factory()) })
	})
}

func initialized(t *testing.T, d driver.Driver) driver.Driver {
	t.Helper()
	require.NoError(t, d.Init())
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func testSetGet(t *testing.T, d driver.Driver) {
	d = initialized(t, d)

	require.NoError(t, d.Set("a", []byte("1")))

	value, found, err := d.Get("a")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("1"), value)
}

func testGetMissing(t *testing.T, d driver.Driver) {
	d = initialized(t, d)

	_, found, err := d.Get("does-not-exist")
	require.NoError(t, err)
	require.False(t, found)
}

func testRemove(t *testing.T, d driver.Driver) {
	d = initialized(t, d)

	require.NoError(t, d.Set("a", []byte("1")))
	require.NoError(t, d.Remove("a"))

	_, found, err := d.Get("a")
	require.NoError(t, err)
	require.False(t, found)
}

func testRemoveMissing(t *testing.T, d driver.Driver) {
	d = initialized(t, d)

	require.NoError(t, d.Remove("never-existed"))
}

func testOverwrite(t *testing.T, d driver.Driver) {
	d = initialized(t, d)

	require.NoError(t, d.Set("a", []byte("1")))
	require.NoError(t, d.Set("a", []byte("2")))

	value, found, err := d.Get("a")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("2"), value)
}

func testDoBulk(t *testing.T, d driver.Driver) {
	d = initialized(t, d)

	require.NoError(t, d.Set("keep", []byte("original")))

	err := d.DoBulk([]driver.Op{
		{Type: driver.OpSet, Key: "a", Value: []byte("1")},
		{Type: driver.OpSet, Key: "a", Value: []byte("2")},
		{Type: driver.OpRemove, Key: "keep"},
		{Type: driver.OpSet, Key: "b", Value: []byte("3")},
	})
	require.NoError(t, err)

	value, found, err := d.Get("a")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("2"), value, "later ops in a bulk must win over earlier ones for the same key")

	_, found, err = d.Get("keep")
	require.NoError(t, err)
	require.False(t, found)

	value, found, err = d.Get("b")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("3"), value)
}

func testDoBulkEmpty(t *testing.T, d driver.Driver) {
	d = initialized(t, d)

	require.NoError(t, d.DoBulk(nil))
	require.NoError(t, d.DoBulk([]driver.Op{}))
}

func testDefaultSettings(t *testing.T, d driver.Driver) {
	d = initialized(t, d)

	// DefaultSettings must not panic and, if non-nil, must describe a
	// valid configuration (WriteInterval and Cache are never negative).
	settings := d.DefaultSettings()
	if settings == nil {
		return
	}
	require.GreaterOrEqual(t, settings.Cache, 0)
	require.GreaterOrEqual(t, settings.WriteInterval, time.Duration(0))
}
