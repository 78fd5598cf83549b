package memdriver

import (
	"sync"

	"github.com/ValentinKolb/bufkv/lib/driver"
	"github.com/puzpuzpuz/xsync/v3"
)

// memDriver implements driver.Driver over a concurrent in-memory map.
type memDriver struct {
	data *xsync.MapOf[string, []byte]

	// bulkMu serializes DoBulk calls against each other so that two
	// concurrent bulk operations never interleave their ops. Individual
	// Get/Set/Remove calls do not need it: they are independent per-key
	// operations with no cross-key atomicity requirement, which is what
	// xsync.MapOf already gives them for free.
	bulkMu sync.Mutex
}

// New creates a new in-memory driver.Driver. It never needs Init to do any
// real work, but still follows the Init-then-use lifecycle of every other
// driver.
func New() driver.Driver {
	return &memDriver{
		data: xsync.NewMapOf[string, []byte](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docs see driver.Driver)
// --------------------------------------------------------------------------

func (d *memDriver) Init() error {
	return nil
}

func (d *memDriver) Get(key string) ([]byte, bool, error) {
	value, ok := d.data.Load(key)
	if !ok {
		return nil, false, nil
	}
	// Return a copy: callers must not be able to mutate our stored bytes.
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (d *memDriver) Set(key string, value []byte) error {
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	d.data.Store(key, valueCopy)
	return nil
}

func (d *memDriver) Remove(key string) error {
	d.data.Delete(key)
	return nil
}

func (d *memDriver) DoBulk(ops []driver.Op) error {
	d.bulkMu.Lock()
	defer d.bulkMu.Unlock()

	for _, op := range ops {
		switch op.Type {
		case driver.OpSet:
			if err := d.Set(op.Key, op.Value); err != nil {
				return err
			}
		case driver.OpRemove:
			if err := d.Remove(op.Key); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *memDriver) Close() error {
	return nil
}

func (d *memDriver) DefaultSettings() *driver.Settings {
	return &driver.Settings{
		Cache:         0,
		WriteInterval: 0,
		JSON:          true,
	}
}
