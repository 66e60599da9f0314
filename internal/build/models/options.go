package models

import (
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitebuild/internal/config"
)

// Options is the resolved, per-build configuration handed to every plugin factory.
// It is built once by the orchestrator before any hook runs and must be treated
// as read-only afterwards.
type Options struct {
	BuildID   string
	Mode      config.BuildMode
	Root      string
	SrcDir    string
	PublicDir string
	OutDir    string
	// EventStorePath is the configured event store file, if any.
	EventStorePath string
	// ActionsDisabled stops the bundler from compiling the actions entry module.
	ActionsDisabled bool
	// Commit is the HEAD commit of the repository containing Root, if any.
	Commit    string
	StartedAt time.Time
	Logger    *slog.Logger
}

// NewOptions resolves cfg into build options.
func NewOptions(cfg *config.Config, buildID string, startedAt time.Time) *Options {
	return &Options{
		BuildID:   buildID,
		Mode:      cfg.Build.Mode,
		Root:      cfg.Project.Root,
		SrcDir:    cfg.SrcPath(),
		PublicDir: cfg.PublicPath(),
		OutDir:    cfg.OutPath(),
		StartedAt: startedAt,

		EventStorePath:  cfg.EventStorePath(),
		ActionsDisabled: !cfg.Actions.IsEnabled(),
	}
}

// Targets returns the targets built in this mode, in build order.
func (o *Options) Targets() []Target {
	if o.Mode == config.ModeServer {
		return []Target{TargetServer}
	}
	return []Target{TargetServer, TargetClient}
}

// OutputDirFor returns the directory a target's bundle is written to.
func (o *Options) OutputDirFor(t Target) string {
	return filepath.Join(o.OutDir, string(t))
}

// Protected lists the paths that must survive cleaning OutDir.
func (o *Options) Protected() []config.ProtectedPath {
	return []config.ProtectedPath{
		{Name: "project root", Path: o.Root},
		{Name: "src_dir", Path: o.SrcDir, Strict: true},
		{Name: "public_dir", Path: o.PublicDir, Strict: true},
		{Name: "eventstore.path", Path: o.EventStorePath},
	}
}

// ResolveSrc joins rel onto the source directory.
func (o *Options) ResolveSrc(rel string) string {
	return filepath.Join(o.SrcDir, filepath.FromSlash(rel))
}

// Log returns the build logger, falling back to the default logger.
func (o *Options) Log() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
