package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"serialx/internal/logging"
	"serialx/internal/serial"
	"serialx/internal/telemetry"
	"serialx/internal/transform"
	"serialx/internal/ui"
	"serialx/sink"
	"serialx/sink/stdout"
	"serialx/source/console"
)

// State is the externally visible lifecycle of a session.
type State int

const (
	AwaitingInput State = iota
	Terminated
)

func (s State) String() string {
	if s == Terminated {
		return "terminated"
	}
	return "awaiting-input"
}

// ErrTerminated is returned by Handle once the session has ended.
var ErrTerminated = errors.New("session: terminated")

type mode int

const (
	modeMenu mode = iota
	modeEncode
	modeDecode
	modeBatch
	modeConfirm
)

var startModes = map[string]mode{
	"":       modeMenu,
	"menu":   modeMenu,
	"encode": modeEncode,
	"decode": modeDecode,
	"batch":  modeBatch,
}

type Options struct {
	Codec    *serial.Codec
	Catalog  *serial.Catalog
	Renderer *ui.Renderer       // nil → plain output
	Metrics  *telemetry.Metrics // nil → private registry

	// Display lists generated batches; nil → stdout sink on the session writer.
	Display sink.Adapter
	// Sinks receive a batch when the user chooses to save it.
	Sinks []sink.Binding

	WarnAbove int  // confirm before generating more units than this
	Verify    bool // offer a round-trip check after each result
	StartMode string
}

// Entry is one processed input line and what it produced.
type Entry struct {
	Op     string
	Input  string
	Output string
	Err    error
}

// Session drives the read-transform-print loop. It is not safe for
// concurrent use; Run owns it until it returns.
type Session struct {
	opts  Options
	in    console.LineReader
	out   *errWriter
	theme ui.Theme
	help  string

	enc, dec transform.Transformer

	state   State
	mode    mode
	started bool
	reading bool
	confirm *confirmation
	wizard  *wizard
	history []Entry
}

func New(in console.LineReader, out io.Writer, opts Options) (*Session, error) {
	if opts.Codec == nil || opts.Catalog == nil {
		return nil, errors.New("session: codec and catalog are required")
	}
	start, ok := startModes[strings.ToLower(opts.StartMode)]
	if !ok {
		return nil, fmt.Errorf("session: unknown start mode %q", opts.StartMode)
	}
	if opts.Renderer == nil {
		opts.Renderer = &ui.Renderer{Theme: ui.PlainTheme()}
	}
	if opts.Metrics == nil {
		opts.Metrics = telemetry.NewMetrics()
	}
	if opts.WarnAbove <= 0 {
		opts.WarnAbove = 100
	}
	if opts.Display == nil {
		d, err := sink.NewAdapter("stdout")
		if err != nil {
			return nil, err
		}
		if err := d.Configure(stdout.Config{Writer: out, Header: true}); err != nil {
			return nil, err
		}
		opts.Display = d
	}

	enc, err := transform.New("encode", opts.Codec, opts.Catalog)
	if err != nil {
		return nil, err
	}
	dec, err := transform.New("decode", opts.Codec, opts.Catalog)
	if err != nil {
		return nil, err
	}

	return &Session{
		opts:  opts,
		in:    in,
		out:   &errWriter{w: out},
		theme: opts.Renderer.Theme,
		help:  opts.Renderer.Markdown(catalogHelp(opts.Catalog)),
		enc:   enc,
		dec:   dec,
		state: AwaitingInput,
		mode:  start,
	}, nil
}

func (s *Session) State() State { return s.state }

// ReadPending reports whether Run returned while the reader was still
// blocked in ReadLine, as happens on cancellation. The reader must not be
// closed until that call returns.
func (s *Session) ReadPending() bool { return s.reading }

// History returns the processed transformations in order.
func (s *Session) History() []Entry { return append([]Entry(nil), s.history...) }

type readResult struct {
	line string
	err  error
}

// Run prompts, reads and handles lines until the user exits, input ends
// or ctx is cancelled. Only reader and writer failures are returned.
func (s *Session) Run(ctx context.Context) error {
	if s.state == Terminated {
		return nil
	}
	s.start()

	// The read blocks on the terminal; it runs on its own goroutine so a
	// cancelled ctx still ends the session.
	prompts := make(chan string)
	lines := make(chan readResult, 1)
	go func() {
		for p := range prompts {
			line, err := s.in.ReadLine(p)
			lines <- readResult{line: line, err: err}
		}
	}()
	defer close(prompts)

	for s.state == AwaitingInput {
		if s.out.err != nil {
			return s.out.err
		}
		select {
		case prompts <- s.prompt():
			s.reading = true
		case <-ctx.Done():
			s.terminate("\nInterrupted.")
			return s.out.err
		}

		select {
		case r := <-lines:
			s.reading = false
			switch {
			case errors.Is(r.err, io.EOF):
				logging.L().Debug("end of input")
				s.terminate("")
			case errors.Is(r.err, console.ErrInterrupted):
				s.terminate("\nInterrupted.")
			case errors.Is(r.err, console.ErrLineTooLong):
				s.opts.Metrics.Lines.Inc()
				s.errorf("input line too long (limit %d bytes)", console.MaxLine)
			case r.err != nil:
				s.state = Terminated
				return fmt.Errorf("read input: %w", r.err)
			default:
				if err := s.Handle(ctx, r.line); err != nil {
					return err
				}
			}
		case <-ctx.Done():
			s.terminate("\nInterrupted.")
		}
	}
	return s.out.err
}

// Handle processes one input line in the current mode. Malformed input is
// reported to the user and never returned; the error is non-nil only when
// output fails or the session is already over.
func (s *Session) Handle(ctx context.Context, raw string) error {
	if s.state == Terminated {
		return ErrTerminated
	}
	s.start()
	s.opts.Metrics.Lines.Inc()

	line := strings.TrimSpace(raw)
	switch strings.ToLower(line) {
	case "exit", "quit":
		s.terminate("Exited!")
		return s.out.err
	case "help":
		s.out.printf("%s\n", s.help)
		return s.out.err
	case "back":
		if s.mode != modeMenu {
			s.confirm, s.wizard = nil, nil
			s.enter(modeMenu)
			return s.out.err
		}
	}

	switch s.mode {
	case modeMenu:
		s.handleMenu(line)
	case modeEncode:
		s.handleTransform(ctx, s.enc, line)
	case modeDecode:
		s.handleTransform(ctx, s.dec, line)
	case modeBatch:
		s.handleWizard(ctx, line)
	case modeConfirm:
		s.handleConfirm(line)
	}
	return s.out.err
}

func (s *Session) start() {
	if s.started {
		return
	}
	s.started = true
	s.enter(s.mode)
}

func (s *Session) terminate(msg string) {
	if msg != "" {
		s.out.printf("%s\n", msg)
	}
	s.state = Terminated
	logging.L().Debug("session terminated", "lines", len(s.history))
}

func (s *Session) prompt() string {
	switch s.mode {
	case modeEncode:
		return "Serial: "
	case modeDecode:
		return "Public Code: "
	case modeBatch:
		return s.wizard.prompt(s.opts.Catalog)
	case modeConfirm:
		return s.confirm.prompt
	default:
		return "Enter your choice (1-4): "
	}
}

/* ────────── output ────────── */

// errWriter keeps the first write error; later writes are dropped.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, a ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, a...)
}

func (s *Session) errorf(format string, a ...any) {
	s.out.printf("%s\n", s.theme.Error.Render("ERROR: "+fmt.Sprintf(format, a...)))
}

func (s *Session) warnf(format string, a ...any) {
	s.out.printf("%s\n", s.theme.Warn.Render("WARNING: "+fmt.Sprintf(format, a...)))
}
