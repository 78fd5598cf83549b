package sqlite_test

import (
	"testing"
	"time"

	"github.com/ValentinKolb/bufkv/lib/driver"
	"github.com/ValentinKolb/bufkv/lib/driver/sqlite"
	drivertesting "github.com/ValentinKolb/bufkv/lib/driver/testing"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDriver(t *testing.T) {
	drivertesting.RunDriverTests(t, "sqlite", func() driver.Driver {
		return sqlite.Open(sqlite.Options{Path: ":memory:"})
	})
}

func TestSQLiteDriverDefaultSettingsDifferByPath(t *testing.T) {
	mem := sqlite.Open(sqlite.Options{Path: ":memory:"}).DefaultSettings()
	require.NotNil(t, mem)
	require.Equal(t, 0, mem.Cache)
	require.Equal(t, time.Duration(0), mem.WriteInterval)

	file := sqlite.Open(sqlite.Options{Path: t.TempDir() + "/bufkv.sqlite"}).DefaultSettings()
	require.NotNil(t, file)
	require.Equal(t, 1000, file.Cache)
	require.Greater(t, file.WriteInterval, time.Duration(0))
}
