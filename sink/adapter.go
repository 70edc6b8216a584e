package sink

import (
	"context"
	"fmt"

	"serialx/internal/serial"
)

// Adapter is the common behaviour every batch sink exposes.
type Adapter interface {
	Configure(any) error                       // driver-specific config struct
	Push(context.Context, *serial.Batch) error // consume one batch
	Close() error                              // idempotent
}

// Locator is *optional*; sinks that write somewhere the user can find
// (a file, a topic) report where a batch went.
type Locator interface {
	Location(*serial.Batch) string
}

// Binding pairs a configured adapter with the name it was built from.
type Binding struct {
	Name    string
	Adapter Adapter
}

/*──────── registry ───────*/

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown sink %q", name)
}
