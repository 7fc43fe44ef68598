// Package main is the entry point for the eventhub scenario runner.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dshills/eventhub"
	"github.com/dshills/eventhub/internal/config"
	"github.com/dshills/eventhub/internal/logging"
	luahub "github.com/dshills/eventhub/internal/lua"
	"github.com/dshills/eventhub/internal/metrics"
	"github.com/dshills/eventhub/internal/scenario"
	"github.com/dshills/eventhub/internal/tracing"
	"github.com/dshills/eventhub/internal/watch"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// options holds the command-line flags. Empty strings leave the config file
// and environment settings in place.
type options struct {
	ConfigPath  string
	LogLevel    string
	LogFormat   string
	MetricsAddr string
	Watch       bool
	File        string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return 1
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger := logging.New(logging.Options{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
		Attrs:  []slog.Attr{slog.String("service", cfg.ServiceName)},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := tracing.Setup(ctx, cfg.OTelEndpoint, cfg.ServiceName)
	if err != nil {
		logger.Error("tracing setup failed", "error", err)
		return 1
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	r := &runner{
		cfg:     cfg,
		file:    opts.File,
		logger:  logger,
		metrics: metrics.New(),
		tracing: tracing.New(nil),
	}

	if !opts.Watch {
		if ok := r.runOnce(ctx); !ok {
			return 1
		}
		return 0
	}

	if cfg.MetricsAddr != "" {
		go func() {
			logger.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := r.metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	r.runOnce(ctx)
	logger.Info("watching for changes", "file", opts.File, "debounce", cfg.WatchDebounce.String())

	err = watch.Watch(ctx, opts.File, cfg.WatchDebounce.Std(), func(ctx context.Context) {
		logger.Info("file changed, rerunning", "file", opts.File)
		r.runOnce(ctx)
	})
	if err != nil {
		logger.Error("watch failed", "error", err)
		return 1
	}
	return 0
}

// runner runs the input file against a fresh hub per run.
type runner struct {
	cfg     *config.Config
	file    string
	logger  *slog.Logger
	metrics *metrics.Observer
	tracing *tracing.Observer
}

// runOnce runs the file and reports whether it passed.
func (r *runner) runOnce(ctx context.Context) bool {
	hub := eventhub.New(
		eventhub.WithLogger(logging.WithComponent(r.logger, "hub")),
		eventhub.WithObserver(eventhub.Observers(r.metrics, r.tracing)),
	)

	var err error
	if strings.EqualFold(filepath.Ext(r.file), ".lua") {
		err = r.runScript(ctx, hub)
	} else {
		err = r.runScenario(ctx, hub)
	}

	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return false
	}
	return true
}

var errFailed = errors.New("checks failed")

func (r *runner) runScenario(ctx context.Context, hub *eventhub.Hub) error {
	sc, err := scenario.Load(r.file)
	if err != nil {
		return err
	}

	report, err := scenario.Run(ctx, sc,
		scenario.WithHub(hub),
		scenario.WithLogger(logging.WithComponent(r.logger, "scenario")),
	)
	if err != nil {
		return err
	}
	if err := report.Write(os.Stdout); err != nil {
		return err
	}
	if report.Failed() {
		return errFailed
	}
	return nil
}

func (r *runner) runScript(ctx context.Context, hub *eventhub.Hub) error {
	err := luahub.RunFile(ctx, r.file, hub, luahub.WithTimeout(r.cfg.LuaTimeout.Std()))
	stats := hub.Stats()
	if err != nil {
		fmt.Fprintf(os.Stdout, "FAIL %s: %v\n", r.file, err)
		return errFailed
	}
	fmt.Fprintf(os.Stdout, "PASS %s (%d emits, %d calls)\n", r.file, stats.Emits, stats.Invocations)
	return nil
}

// applyFlags overrides config settings with the flags that were given.
func applyFlags(cfg *config.Config, opts options) {
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.LogFormat = opts.LogFormat
	}
	if opts.MetricsAddr != "" {
		cfg.MetricsAddr = opts.MetricsAddr
	}
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (TOML or YAML)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.LogFormat, "log-format", "", "Log format (text, json, auto)")
	flag.StringVar(&opts.MetricsAddr, "metrics-addr", "", "Serve /metrics on this address in watch mode")
	flag.BoolVar(&opts.Watch, "watch", false, "Rerun when the file changes")
	flag.BoolVar(&opts.Watch, "w", false, "Rerun when the file changes (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "eventhub - run event hub scenarios and scripts\n\n")
		fmt.Fprintf(os.Stderr, "Usage: eventhub [options] <file>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  eventhub doors.yaml             Run a scenario\n")
		fmt.Fprintf(os.Stderr, "  eventhub once.toml              Run a TOML scenario\n")
		fmt.Fprintf(os.Stderr, "  eventhub handlers.lua           Run a Lua script\n")
		fmt.Fprintf(os.Stderr, "  eventhub -w -metrics-addr :9090 doors.yaml\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("eventhub %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	opts.File = flag.Arg(0)

	ext := strings.ToLower(filepath.Ext(opts.File))
	if ext != ".lua" && scenario.FormatOf(opts.File) == "" {
		fmt.Fprintf(os.Stderr, "Error: unsupported file %q (want .yaml, .yml, .toml or .lua)\n", opts.File)
		os.Exit(1)
	}

	return opts
}
