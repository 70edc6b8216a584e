package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"serialx/internal/engine"
	"serialx/internal/logging"
)

func main() {
	cfg := engine.Config{}
	flag.StringVar(&cfg.ConfigPath, "config", "serialx.yml", "config file (optional)")
	flag.StringVar(&cfg.Mode, "mode", "menu", "start in menu, encode, decode or batch")
	flag.BoolVar(&cfg.NoColor, "no-color", false, "disable styled output")
	flag.Parse()

	logging.InitFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := engine.Bootstrap(ctx, cfg)
	if err != nil {
		logging.L().Error("bootstrap", "err", err)
		os.Exit(1)
	}

	if err := e.Run(ctx); err != nil {
		logging.L().Error("session", "err", err)
		stop()
		os.Exit(1)
	}
}
