package memdriver_test

import (
	"testing"

	"github.com/ValentinKolb/bufkv/lib/driver"
	"github.com/ValentinKolb/bufkv/lib/driver/memdriver"
	drivertesting "github.com/ValentinKolb/bufkv/lib/driver/testing"
)

func TestMemDriver(t *testing.T) {
	drivertesting.RunDriverTests(t, "memdriver", func() driver.Driver {
		return memdriver.New()
	})
}
