package engine

import (
	"context"

	"serialx/internal/logging"
	"serialx/internal/session"
	"serialx/internal/telemetry"
	"serialx/sink"
	"serialx/source/console"
)

type Engine struct {
	session  *session.Session
	in       console.LineReader
	sinks    []sink.Binding
	metrics  *telemetry.Metrics
	textfile string
}

// Run blocks until the session ends, then releases the terminal and sinks.
// Only fatal I/O errors are returned.
func (e *Engine) Run(ctx context.Context) error {
	err := e.session.Run(ctx)

	if e.session.ReadPending() {
		// closing liner under a live Prompt races with its terminal restore
		logging.L().Debug("input read still pending; leaving reader open")
	} else if cerr := e.in.Close(); cerr != nil {
		logging.L().Warn("close input", "err", cerr)
	}
	closeSinks(e.sinks)
	if werr := e.metrics.WriteTextfile(e.textfile); werr != nil {
		logging.L().Warn("metrics textfile", "path", e.textfile, "err", werr)
	}
	return err
}

func (e *Engine) Session() *session.Session { return e.session }
