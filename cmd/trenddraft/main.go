package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/deusflow/trenddraft/internal/app"
	"github.com/deusflow/trenddraft/internal/config"
	"github.com/deusflow/trenddraft/internal/logger"
)

type options struct {
	DryRun  bool   `long:"dry-run" description:"Render and log the draft without sending email"`
	Source  string `long:"source" choice:"rss" choice:"newsapi" description:"Candidate source, overrides SOURCE_MODE"`
	Filters string `long:"filters" value-name:"PATH" description:"YAML file with sensitive_keywords and paywall_domains"`
	Debug   bool   `long:"debug" description:"Enable debug logging"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if opts.Source != "" {
		cfg.SourceMode = opts.Source
	}
	if opts.Filters != "" {
		if err := cfg.ApplyFiltersFile(opts.Filters); err != nil {
			slog.Error("failed to load filters", "error", err)
			os.Exit(1)
		}
	}
	if opts.Debug {
		cfg.Debug = true
	}

	log := logger.Init(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, log, app.Options{DryRun: opts.DryRun}); err != nil {
		log.Error("configuration error", "error", err)
		stop()
		os.Exit(1)
	}
}
