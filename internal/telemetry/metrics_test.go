package telemetry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountersAndTextfile(t *testing.T) {
	m := NewMetrics()
	m.Lines.Add(3)
	m.Transforms.WithLabelValues("encode", Result(nil)).Inc()
	m.Transforms.WithLabelValues("decode", Result(errors.New("x"))).Inc()

	if got := testutil.ToFloat64(m.Lines); got != 3 {
		t.Fatalf("want 3 lines, got %v", got)
	}
	if got := testutil.ToFloat64(m.Transforms.WithLabelValues("decode", "error")); got != 1 {
		t.Fatalf("want 1 decode error, got %v", got)
	}

	path := filepath.Join(t.TempDir(), "serialx.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(raw), "serialx_session_lines_total 3") {
		t.Fatalf("textfile missing line counter:\n%s", raw)
	}
}

func TestMetrics_WriteTextfileEmptyPath(t *testing.T) {
	if err := NewMetrics().WriteTextfile(""); err != nil {
		t.Fatalf("empty path should be a no-op, got %v", err)
	}
}
