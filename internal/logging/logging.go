package logging

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
)

type Options struct {
	Level string
	JSON  bool

	// Output defaults to stderr; stdout belongs to the interactive session.
	Output io.Writer
}

var def atomic.Value

func init() {
	cfg := &slog.HandlerOptions{Level: slog.LevelWarn}
	h := slog.NewTextHandler(os.Stderr, cfg)
	def.Store(slog.New(h))
}

func Configure(opts Options) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	cfg := &slog.HandlerOptions{Level: parseLevel(opts.Level)}
	var h slog.Handler
	if opts.JSON {
		h = slog.NewJSONHandler(out, cfg)
	} else {
		h = slog.NewTextHandler(out, cfg)
	}
	def.Store(slog.New(h))
}

func parseLevel(s string) slog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func L() *slog.Logger {
	l, _ := def.Load().(*slog.Logger)
	return l
}

// Env vars that override the level and format from any config file.
const (
	EnvLevel = "SERIALX_LOG_LEVEL"
	EnvJSON  = "SERIALX_LOG_JSON"
)

// FromEnv returns base with Level and JSON replaced by SERIALX_LOG_LEVEL
// and SERIALX_LOG_JSON when those are set.
func FromEnv(base Options) Options {
	if lvl := strings.TrimSpace(os.Getenv(EnvLevel)); lvl != "" {
		base.Level = lvl
	}
	if b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(EnvJSON))); err == nil {
		base.JSON = b
	}
	return base
}

// InitFromEnv configures the logger before any config file is read.
func InitFromEnv() {
	Configure(FromEnv(Options{}))
}
