package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuild/internal/build"
	"git.home.luguber.info/inful/sitebuild/internal/config"
	"git.home.luguber.info/inful/sitebuild/internal/eventstore"
	"git.home.luguber.info/inful/sitebuild/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuild/internal/logfields"
	"git.home.luguber.info/inful/sitebuild/internal/metrics"
	"git.home.luguber.info/inful/sitebuild/internal/notify"
	"git.home.luguber.info/inful/sitebuild/internal/plugin/builtin"
)

// LogLevelEnv overrides the log level when --verbose is not given.
const LogLevelEnv = "SITEBUILD_LOG_LEVEL"

// Global is shared with every command.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitebuild.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the site once"`
	Watch   WatchCmd   `cmd:"" help:"Build, then rebuild whenever sources change"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	History HistoryCmd `cmd:"" help:"Show recent builds from the event store"`
	Plugins PluginsCmd `cmd:"" help:"List available build plugins"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := parseLogLevel(c.Verbose, os.Getenv(LogLevelEnv))
	g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// parseLogLevel picks debug for --verbose, else the level named by env, else info.
func parseLogLevel(verbose bool, env string) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig loads the configuration and classifies failures for exit codes.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "load configuration").
			WithContext("path", path).
			UserAction().
			Build()
	}
	return cfg, nil
}

// openEventStore opens the configured event store, or returns nil when none is configured.
func openEventStore(cfg *config.Config) (*eventstore.SQLiteStore, error) {
	p := cfg.EventStorePath()
	if p == "" {
		return nil, nil
	}
	if p != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return nil, errors.WrapError(err, errors.CategoryFileSystem, "create event store directory").
				WithContext("path", p).
				Build()
		}
	}
	return eventstore.NewSQLiteStore(p)
}

// resources holds everything a build needs that must be released afterwards.
type resources struct {
	builder   *build.Builder
	store     *eventstore.SQLiteStore
	publisher notify.Publisher
}

func (r *resources) Close() {
	if r.store != nil {
		_ = r.store.Close()
	}
	if r.publisher != nil {
		_ = r.publisher.Close()
	}
}

// newBuilder wires the builder with the built-in plugins, event store and notifier.
func newBuilder(g *Global, cfg *config.Config, recorder metrics.Recorder) (*resources, error) {
	reg, err := builtin.NewRegistry()
	if err != nil {
		return nil, err
	}
	res := &resources{}
	res.store, err = openEventStore(cfg)
	if err != nil {
		return nil, err
	}
	res.publisher, err = notify.New(cfg.Notify, g.Logger)
	if err != nil {
		g.Logger.Warn("Build notifications disabled", logfields.Error(err))
		res.publisher = notify.NoopPublisher{}
	}

	res.builder = build.NewBuilder(cfg, reg).
		WithLogger(g.Logger).
		WithRecorder(recorder).
		WithPublisher(res.publisher)
	if res.store != nil {
		res.builder.WithEventStore(res.store)
	}
	return res, nil
}

func applyOverrides(cfg *config.Config, mode, out string) error {
	if mode != "" {
		m, err := config.ParseBuildMode(mode)
		if err != nil {
			return errors.ValidationError(err.Error()).Build()
		}
		cfg.Build.Mode = m
	}
	if out != "" {
		abs, err := filepath.Abs(out)
		if err != nil {
			return fmt.Errorf("resolve output directory: %w", err)
		}
		cfg.Project.OutDir = abs
	}
	if err := config.Validate(cfg); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid configuration").UserAction().Build()
	}
	return nil
}
