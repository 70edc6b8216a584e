// Package csvfile saves a batch as <Product>_<Model>_batch<YYBB>.csv.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"serialx/internal/logging"
	"serialx/internal/serial"
	"serialx/sink"
)

type Config struct {
	Dir string // created on first Push
}

type driver struct {
	cfg Config
}

func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("csvfile-sink: expected Config, got %T", raw)
	}
	if c.Dir == "" {
		c.Dir = "."
	}
	d.cfg = c
	return nil
}

// Location is the file a batch is written to.
func (d *driver) Location(b *serial.Batch) string {
	name := fmt.Sprintf("%s_%s_batch%s.csv", safe(b.Product.Name), safe(b.Model.Name), b.Request.ID())
	return filepath.Join(d.cfg.Dir, name)
}

func (d *driver) Push(_ context.Context, b *serial.Batch) error {
	if err := os.MkdirAll(d.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("csvfile-sink: %w", err)
	}
	path := d.Location(b)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csvfile-sink: %w", err)
	}

	if err := writeRows(csv.NewWriter(f), b); err != nil {
		_ = f.Close()
		return fmt.Errorf("csvfile-sink: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("csvfile-sink: close %s: %w", path, err)
	}
	logging.L().Info("batch saved", "path", path, "units", len(b.Items))
	return nil
}

func writeRows(w *csv.Writer, b *serial.Batch) error {
	if err := w.Write([]string{"Unit", "Original Serial", "Public Code", "Product", "Model"}); err != nil {
		return err
	}
	for _, it := range b.Items {
		if err := w.Write([]string{strconv.Itoa(it.Unit), it.Original, it.Public, b.Product.Name, b.Model.Name}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (d *driver) Close() error { return nil }

// safe keeps catalog names from escaping the output directory.
func safe(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':':
			return '_'
		}
		return r
	}, s)
}

func init() {
	sink.Register("csvfile", func() sink.Adapter { return &driver{} })
}
