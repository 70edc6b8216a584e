// Package stdout prints a batch as CSV rows for copying into a spreadsheet.
package stdout

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"serialx/internal/serial"
	"serialx/sink"
)

/* ────────── public config ────────── */
type Config struct {
	Writer io.Writer // nil → os.Stdout
	Header bool      // print the column header first
}

/* ────────── driver ────────── */
type driver struct {
	mu  sync.Mutex
	cfg Config
}

func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("stdout-sink: expected Config, got %T", raw)
	}
	if c.Writer == nil {
		c.Writer = os.Stdout
	}
	d.cfg = c
	return nil
}

func (d *driver) Push(_ context.Context, b *serial.Batch) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	w := csv.NewWriter(d.cfg.Writer)
	if d.cfg.Header {
		if err := w.Write([]string{"Unit", "Original Serial", "Public Code"}); err != nil {
			return err
		}
	}
	for _, it := range b.Items {
		if err := w.Write([]string{strconv.Itoa(it.Unit), it.Original, it.Public}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (d *driver) Close() error { return nil }

/* ────────── auto-register ────────── */
func init() {
	sink.Register("stdout", func() sink.Adapter { return &driver{} })
}
