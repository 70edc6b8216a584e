package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"serialx/internal/config"
	"serialx/internal/logging"
	"serialx/internal/serial"
	"serialx/internal/session"
	"serialx/internal/telemetry"
	"serialx/internal/ui"
	"serialx/sink"
	"serialx/sink/csvfile"
	"serialx/sink/kafka"
	"serialx/source/console"
)

type Config struct {
	ConfigPath string
	Mode       string // menu|encode|decode|batch
	NoColor    bool

	In, Out *os.File // nil → os.Stdin / os.Stdout
}

func Bootstrap(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.In == nil {
		cfg.In = os.Stdin
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}

	// 1. configuration + logging
	c, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logging.Configure(logging.FromEnv(logging.Options{Level: c.Log.Level, JSON: c.Log.JSON}))

	// 2. codec + catalog
	cat, err := config.LoadCatalog(c.Catalog)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	codec, err := serial.NewCodec(c.Codec.Prime)
	if err != nil {
		return nil, fmt.Errorf("codec: %w", err)
	}

	// 3. presentation
	color := c.UI.Color && !cfg.NoColor && isatty.IsTerminal(cfg.Out.Fd())
	r, err := ui.NewRenderer(ui.Options{Color: color, Markdown: c.UI.Markdown, Width: c.UI.Width})
	if err != nil {
		return nil, fmt.Errorf("ui: %w", err)
	}

	// 4. batch sinks
	sinks, err := compileSinks(c)
	if err != nil {
		return nil, err
	}

	m := telemetry.NewMetrics()
	in := console.New(cfg.In, cfg.Out)
	s, err := session.New(in, cfg.Out, session.Options{
		Codec:     codec,
		Catalog:   cat,
		Renderer:  r,
		Metrics:   m,
		Sinks:     sinks,
		WarnAbove: c.Batch.WarnAbove,
		Verify:    c.UI.Verify,
		StartMode: cfg.Mode,
	})
	if err != nil {
		_ = in.Close()
		closeSinks(sinks)
		return nil, err
	}

	logging.L().Info("bootstrap complete",
		"products", len(cat.Products()), "sinks", len(sinks), "mode", cfg.Mode)
	return &Engine{
		session:  s,
		in:       in,
		sinks:    sinks,
		metrics:  m,
		textfile: c.Telemetry.Textfile,
	}, nil
}

func compileSinks(c config.Config) ([]sink.Binding, error) {
	var out []sink.Binding
	for _, name := range c.Batch.Sinks {
		drv, err := sink.NewAdapter(name)
		if err != nil {
			closeSinks(out)
			return nil, err
		}

		switch name {
		case "csvfile":
			err = drv.Configure(csvfile.Config{Dir: c.Batch.OutputDir})
		case "kafka":
			err = drv.Configure(kafka.Config{
				Brokers:  c.Kafka.Brokers,
				Topic:    c.Kafka.Topic,
				ClientID: c.Kafka.ClientID,
				Acks:     c.Kafka.RequiredAcks,
			})
		default:
			err = fmt.Errorf("no config block for sink %q", name)
		}
		if err != nil {
			closeSinks(out)
			return nil, fmt.Errorf("sink %s: %w", name, err)
		}
		out = append(out, sink.Binding{Name: name, Adapter: drv})
	}
	return out, nil
}

func closeSinks(bs []sink.Binding) {
	for _, b := range bs {
		if err := b.Adapter.Close(); err != nil {
			logging.L().Warn("sink close failed", "sink", b.Name, "err", err)
		}
	}
}
