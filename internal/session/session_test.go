package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"serialx/internal/serial"
	"serialx/internal/telemetry"
	"serialx/sink"
	"serialx/source/console"
)

func newTestSession(t *testing.T, input string, opts Options) (*Session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	if opts.Codec == nil {
		opts.Codec = serial.MustCodec(serial.DefaultPrime)
	}
	if opts.Catalog == nil {
		opts.Catalog = serial.DefaultCatalog()
	}
	s, err := New(console.NewScanner(strings.NewReader(input), &out), &out, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, &out
}

func run(t *testing.T, s *Session) {
	t.Helper()
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.State() != Terminated {
		t.Fatalf("want terminated, got %s", s.State())
	}
}

func TestSession_MenuEncodeThenExit(t *testing.T) {
	s, out := newTestSession(t, "1\n2005-1102-6100\nn\nback\n4\n", Options{Verify: true})
	run(t, s)

	got := out.String()
	for _, want := range []string{
		"SERIAL NUMBER TRANSFORMATION SYSTEM",
		"--- ENCODE A SERIAL ---",
		"ENCODING SUCCESSFUL",
		"Public Code:     5LRG6030",
		"Model:   GM-102",
		"Unit:    Unit 100",
		"Decode this back to verify? (y/n): ",
		"Exited!",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Verification passed") {
		t.Fatal("verification ran although the user answered n")
	}
}

func TestSession_MalformedInputKeepsLoopAlive(t *testing.T) {
	m := telemetry.NewMetrics()
	s, out := newTestSession(t, "bogus\n\n2005-1102-6100\n", Options{StartMode: "encode", Metrics: m})
	run(t, s)

	got := out.String()
	if !strings.Contains(got, "ERROR: invalid serial format") {
		t.Fatalf("want error line, got:\n%s", got)
	}
	if !strings.Contains(got, "Public Code:     5LRG6030") {
		t.Fatalf("line after the error was not processed:\n%s", got)
	}
	h := s.History()
	if len(h) != 2 || h[0].Err == nil || h[1].Output != "5LRG6030" {
		t.Fatalf("unexpected history: %+v", h)
	}
	if v := testutil.ToFloat64(m.Transforms.WithLabelValues("encode", "error")); v != 1 {
		t.Fatalf("want 1 encode error, got %v", v)
	}
	if v := testutil.ToFloat64(m.Lines); v != 3 {
		t.Fatalf("want 3 lines, got %v", v)
	}
}

func TestSession_OverlongLineIsReportedAndSkipped(t *testing.T) {
	m := telemetry.NewMetrics()
	in := "1\n" + strings.Repeat("A", 70000) + "\n2005-1102-6100\nexit\n"
	s, out := newTestSession(t, in, Options{Metrics: m})
	run(t, s)

	got := out.String()
	if !strings.Contains(got, "ERROR: input line too long") {
		t.Fatalf("missing too-long error:\n%s", got)
	}
	if !strings.Contains(got, "Public Code:     5LRG6030") || !strings.Contains(got, "Exited!") {
		t.Fatalf("lines after the long one were not processed:\n%s", got)
	}
	if v := testutil.ToFloat64(m.Lines); v != 4 {
		t.Fatalf("want 4 lines, got %v", v)
	}
}

func TestSession_UnknownModelHint(t *testing.T) {
	s, out := newTestSession(t, "2005-1104-6100\n", Options{StartMode: "encode"})
	run(t, s)
	if !strings.Contains(out.String(), "Check product type and model are valid") {
		t.Fatalf("missing catalog hint:\n%s", out.String())
	}
}

func TestSession_ExitStopsProcessing(t *testing.T) {
	m := telemetry.NewMetrics()
	s, out := newTestSession(t, "EXIT\n2005-1102-6100\n", Options{StartMode: "encode", Metrics: m})
	run(t, s)

	if strings.Contains(out.String(), "ENCODING SUCCESSFUL") {
		t.Fatal("input after exit was processed")
	}
	if len(s.History()) != 0 {
		t.Fatalf("want empty history, got %+v", s.History())
	}
	if v := testutil.ToFloat64(m.Lines); v != 1 {
		t.Fatalf("want 1 line read, got %v", v)
	}
	if err := s.Handle(context.Background(), "2005-1102-6100"); !errors.Is(err, ErrTerminated) {
		t.Fatalf("want ErrTerminated, got %v", err)
	}
}

func TestSession_EOFTerminatesCleanly(t *testing.T) {
	s, _ := newTestSession(t, "", Options{})
	run(t, s)
	if s.ReadPending() {
		t.Fatal("no read should be pending after EOF")
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run on terminated session: %v", err)
	}
}

func TestSession_Deterministic(t *testing.T) {
	s, _ := newTestSession(t, "2402-2100-6001\n2402-2100-6001\n", Options{StartMode: "encode"})
	run(t, s)
	h := s.History()
	if len(h) != 2 || h[0].Output != h[1].Output || h[0].Output != "BB75SDZR" {
		t.Fatalf("unexpected history: %+v", h)
	}
}

func TestSession_EncodeVerify(t *testing.T) {
	s, out := newTestSession(t, "2005-1102-6100\ny\n", Options{StartMode: "encode", Verify: true})
	run(t, s)
	if !strings.Contains(out.String(), "Verification passed: 5LRG6030 -> 2005-1102-6100") {
		t.Fatalf("missing verification:\n%s", out.String())
	}
}

func TestSession_DecodeUppercasesAndVerifies(t *testing.T) {
	s, out := newTestSession(t, "5lrg6030\nY\nZZZZZZZZ\n", Options{StartMode: "decode", Verify: true})
	run(t, s)

	got := out.String()
	for _, want := range []string{
		"DECODING SUCCESSFUL",
		"Original Serial: 2005-1102-6100",
		"Verification passed: 2005-1102-6100 -> 5LRG6030",
		"ERROR: public code does not map to a serial",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}

func TestSession_BackAndInvalidChoice(t *testing.T) {
	s, out := newTestSession(t, "back\n9\nback\n4\n", Options{StartMode: "decode"})
	run(t, s)

	got := out.String()
	if strings.Count(got, "SERIAL NUMBER TRANSFORMATION SYSTEM") != 1 {
		t.Fatalf("want menu once after back:\n%s", got)
	}
	if strings.Count(got, "Invalid choice. Please enter 1-4.") != 2 {
		t.Fatalf("want two invalid choices (9 and back in menu):\n%s", got)
	}
	if !strings.Contains(got, "Exited!") {
		t.Fatalf("missing exit:\n%s", got)
	}
}

func TestSession_Help(t *testing.T) {
	s, out := newTestSession(t, "help\n", Options{})
	run(t, s)
	if !strings.Contains(out.String(), "- **Product 2**: FarmSense") {
		t.Fatalf("help missing catalog:\n%s", out.String())
	}
}

func TestNew_RejectsUnknownStartMode(t *testing.T) {
	_, err := New(console.NewScanner(strings.NewReader(""), nil), io.Discard, Options{
		Codec:     serial.MustCodec(serial.DefaultPrime),
		Catalog:   serial.DefaultCatalog(),
		StartMode: "rot13",
	})
	if err == nil {
		t.Fatal("expected error for unknown start mode")
	}
	if _, err := New(nil, io.Discard, Options{}); err == nil {
		t.Fatal("expected error without codec and catalog")
	}
}

/* ────────── failure paths ────────── */

type blockingReader struct{ release chan struct{} }

func (b blockingReader) ReadLine(string) (string, error) {
	<-b.release
	return "", io.EOF
}
func (b blockingReader) Close() error { return nil }

func TestSession_CancelWhileReading(t *testing.T) {
	r := blockingReader{release: make(chan struct{})}
	t.Cleanup(func() { close(r.release) })

	var out bytes.Buffer
	s, err := New(r, &out, Options{Codec: serial.MustCodec(serial.DefaultPrime), Catalog: serial.DefaultCatalog()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.State() != Terminated || !strings.Contains(out.String(), "Interrupted.") {
		t.Fatalf("want interrupted termination, got %s:\n%s", s.State(), out.String())
	}
	if !s.ReadPending() {
		t.Fatal("reader is still blocked; ReadPending should report it")
	}
}

type scriptedReader struct {
	lines []string
	err   error
}

func (r *scriptedReader) ReadLine(string) (string, error) {
	if len(r.lines) == 0 {
		return "", r.err
	}
	l := r.lines[0]
	r.lines = r.lines[1:]
	return l, nil
}
func (r *scriptedReader) Close() error { return nil }

func TestSession_InterruptedPromptTerminates(t *testing.T) {
	r := &scriptedReader{lines: []string{"1"}, err: console.ErrInterrupted}
	s, err := New(r, io.Discard, Options{Codec: serial.MustCodec(serial.DefaultPrime), Catalog: serial.DefaultCatalog()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.State() != Terminated {
		t.Fatal("want terminated")
	}
}

func TestSession_ReaderFailureIsFatal(t *testing.T) {
	boom := errors.New("tty gone")
	r := &scriptedReader{err: boom}
	s, err := New(r, io.Discard, Options{Codec: serial.MustCodec(serial.DefaultPrime), Catalog: serial.DefaultCatalog()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("want reader error, got %v", err)
	}
}

type failingWriter struct{ err error }

func (f failingWriter) Write([]byte) (int, error) { return 0, f.err }

func TestSession_WriterFailureIsFatal(t *testing.T) {
	full := errors.New("disk full")
	r := &scriptedReader{lines: []string{"1"}, err: io.EOF}
	s, err := New(r, failingWriter{err: full}, Options{Codec: serial.MustCodec(serial.DefaultPrime), Catalog: serial.DefaultCatalog()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Run(context.Background()); !errors.Is(err, full) {
		t.Fatalf("want writer error, got %v", err)
	}
}

/* ────────── batch wizard ────────── */

type memSink struct {
	batches []*serial.Batch
	err     error
}

func (m *memSink) Configure(any) error { return nil }
func (m *memSink) Push(_ context.Context, b *serial.Batch) error {
	if m.err != nil {
		return m.err
	}
	m.batches = append(m.batches, b)
	return nil
}
func (m *memSink) Close() error { return nil }

func TestSession_BatchWizardRepromptsInvalidFields(t *testing.T) {
	in := "abc\n24\n1\n7\n1\n999\n101\n5\n3\n5\n4\n"
	s, out := newTestSession(t, in, Options{StartMode: "batch"})
	run(t, s)

	got := out.String()
	for _, want := range []string{
		"ERROR: Invalid input - please enter a valid number",
		"ERROR: Invalid product type. Must be one of: 1=GrainMate, 2=FarmSense",
		"Available models for GrainMate:",
		"ERROR: Invalid model. Available models: 101, 102, 103",
		"ERROR: Starting unit must be less than or equal to ending unit",
		"Generating 1 serials...",
		"BATCH: GrainMate GM-101",
		"Units: 005 to 005",
		"5,2401-1101-6005,",
		"Round-trip verified for first unit",
		"Exited!",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Save batch?") {
		t.Fatal("save prompt shown without sinks")
	}
}

func TestSession_BatchWizardWarnsAndSaves(t *testing.T) {
	mem := &memSink{}
	m := telemetry.NewMetrics()
	in := "3\n24\n1\n1\n101\n1\n10\nn\n" + // declined after warning
		"3\n24\n1\n1\n101\n1\n3\nyes\n4\n"
	s, out := newTestSession(t, in, Options{
		WarnAbove: 2,
		Metrics:   m,
		Sinks:     []sink.Binding{{Name: "memory", Adapter: mem}},
	})
	run(t, s)

	got := out.String()
	if !strings.Contains(got, "WARNING: Generating more than 2 units") {
		t.Fatalf("missing warning:\n%s", got)
	}
	if strings.Contains(got, "Generating 10 serials") {
		t.Fatal("declined batch was generated")
	}
	for _, want := range []string{
		"Unit,Original Serial,Public Code",
		"1,2401-1101-6001,42EH1ADJ",
		"2,2401-1101-6002,42V0ERBI",
		"3,2401-1101-6003,43BJS89H",
		"Last unit:  2401-1101-6003 -> 43BJS89H",
		"Saved to memory",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if len(mem.batches) != 1 || len(mem.batches[0].Items) != 3 {
		t.Fatalf("want one saved batch of 3, got %+v", mem.batches)
	}
	if v := testutil.ToFloat64(m.BatchUnits); v != 3 {
		t.Fatalf("want 3 batch units, got %v", v)
	}
	if v := testutil.ToFloat64(m.SinkPushes.WithLabelValues("memory", "ok")); v != 1 {
		t.Fatalf("want 1 sink push, got %v", v)
	}
}

func TestSession_BatchSaveFailureIsReported(t *testing.T) {
	mem := &memSink{err: errors.New("broker down")}
	s, out := newTestSession(t, "24\n1\n2\n100\n1\n1\ny\n", Options{
		StartMode: "batch",
		Sinks:     []sink.Binding{{Name: "memory", Adapter: mem}},
	})
	run(t, s)
	if !strings.Contains(out.String(), "ERROR: save to memory failed: broker down") {
		t.Fatalf("missing save error:\n%s", out.String())
	}
}
