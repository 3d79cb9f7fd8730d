package store

import "fmt"

// Supported drivers.
const (
	DriverPebble = "pebble"
	DriverBadger = "badger"
	DriverMemory = "memory"
)

// Options selects and configures a KV backend.
type Options struct {
	Driver string
	Dir    string
	Sync   bool
}

// Open returns the KV named by opts.Driver; pebble is the default.
func Open(opts Options) (KV, error) {
	switch opts.Driver {
	case "", DriverPebble:
		return NewPebbleStore(opts.Dir, opts.Sync)
	case DriverBadger:
		return NewBadgerStore(opts.Dir, opts.Sync)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
