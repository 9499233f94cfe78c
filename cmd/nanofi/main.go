package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nanofi/nanofi/internal/cli"
	"github.com/nanofi/nanofi/internal/config"
	"github.com/nanofi/nanofi/internal/flagx"
	"github.com/nanofi/nanofi/internal/logging"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig(os.Args[1:])

	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Printf("%v", err)
		return err
	}
	if z, ok := logger.(*logging.ZapLogger); ok {
		defer func() { _ = z.Sync() }()
	}

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return err
	}
	defer app.Close()

	root := cli.NewRootCommand(app)
	root.SetArgs(flagx.StripArgs(os.Args[1:], config.FlagNames))
	return root.ExecuteContext(ctx)
}
