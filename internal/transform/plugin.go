package transform

import (
	"context"
	"fmt"
	"sort"

	"serialx/internal/serial"
)

// Result is one successful transformation. Original and Public are both
// set whichever direction ran.
type Result struct {
	Op       string
	Input    string
	Output   string
	Original string
	Public   string
	Details  serial.Details
}

type Transformer interface {
	Name() string
	Transform(ctx context.Context, input string) (Result, error)
	// Reverse applies the inverse transformation to res.Output.
	Reverse(ctx context.Context, res Result) (string, error)
}

/*──────── registry ───────*/

// Factory builds a Transformer bound to a codec and catalog.
type Factory func(*serial.Codec, *serial.Catalog) Transformer

var registry = map[string]Factory{}

// Register is called from each transformer's init().
func Register(name string, f Factory) { registry[name] = f }

func New(name string, codec *serial.Codec, cat *serial.Catalog) (Transformer, error) {
	if f, ok := registry[name]; ok {
		return f(codec, cat), nil
	}
	return nil, fmt.Errorf("transform: unknown transformer %q", name)
}

// Names lists registered transformers in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
