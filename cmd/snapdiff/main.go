package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"snapdiff/internal/core/app"
	"snapdiff/internal/core/config"
	"snapdiff/internal/shared/observability"
	"snapdiff/internal/ui/cli"
)

var (
	configPath = flag.String("config", "./snapdiff.toml", "Path to config file")
	once       = flag.Bool("once", false, "Run single scan and exit")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("snapdiff v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./snapdiff.toml" && os.IsNotExist(err) {
			slog.Info("no config file found, using defaults", "path", *configPath)
			cfg = config.Default()
		} else {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}

	if flag.NArg() > 0 {
		cfg.WatchPaths = []string{flag.Arg(0)}
		if cfg.Paths.ProjectRoot == "" {
			cfg.Paths.ProjectRoot = flag.Arg(0)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Observability.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint)
		if err != nil {
			slog.Error("failed to initialize tracing", "error", err)
			os.Exit(1)
		}
		defer shutdown(context.Background())
	}

	application, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer application.Close(context.Background())

	var obsServer *cli.ObservabilityServer
	if cfg.Observability.Addr != "" {
		obsServer = cli.NewObservabilityServer(cfg.Observability.Addr, app.NewHealthService(application))
		if err := obsServer.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			os.Exit(1)
		}
		defer obsServer.Stop(context.Background())
	}

	result, err := application.RunScan(ctx)
	if err != nil {
		slog.Error("initial scan failed", "error", err)
		os.Exit(1)
	}
	for _, warning := range result.Warnings {
		slog.Warn(warning)
	}
	if err := application.WriteReports(result); err != nil {
		slog.Error("failed to write reports", "error", err)
	}
	for _, trigger := range result.Triggers.Sorted() {
		fmt.Println(trigger)
	}

	if *once {
		return
	}

	application.SetUpdateHandler(func(update app.Update) {
		for _, trigger := range update.Triggers {
			fmt.Println(trigger)
		}
	})
	if err := application.StartWatcher(); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	slog.Info("shutting down")
}
