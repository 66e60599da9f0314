package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitebuild/internal/build/models"
	"git.home.luguber.info/inful/sitebuild/internal/bundle"
	"git.home.luguber.info/inful/sitebuild/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuild/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuild/internal/git"
	"git.home.luguber.info/inful/sitebuild/internal/logfields"
	"git.home.luguber.info/inful/sitebuild/internal/plugin"
)

// stageDef pairs a stage name with its implementation.
type stageDef struct {
	name models.StageName
	fn   func(ctx context.Context, bs *buildState) error
}

func (b *Builder) stages(opts *models.Options) []stageDef {
	defs := []stageDef{
		{models.StagePrepare, b.stagePrepare},
		{models.StageRegister, b.stageRegister},
	}
	for _, t := range opts.Targets() {
		defs = append(defs, stageDef{models.StageForTarget(t), b.stageTarget(t)})
	}
	return append(defs, stageDef{models.StagePost, b.stagePost})
}

func (b *Builder) stagePrepare(ctx context.Context, bs *buildState) error {
	opts := bs.opts
	if b.cfg.Build.ShouldClean() {
		if err := cleanOutDir(opts); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create output directory").
			WithContext("path", opts.OutDir).
			Build()
	}

	commit, err := git.HeadCommit(opts.Root)
	if err != nil {
		opts.Log().WarnContext(ctx, "Unable to resolve git commit", logfields.Error(err))
	}
	opts.Commit = commit
	if commit != "" {
		opts.Log().DebugContext(ctx, "Resolved source commit", "commit", git.Short(commit))
	}
	return nil
}

// cleanOutDir removes the output directory. It refuses when the directory
// holds the project root, sources, public files or the event store, or lies
// inside the sources or public files.
func cleanOutDir(opts *models.Options) error {
	out := filepath.Clean(opts.OutDir)
	if opts.OutDir == "" || out == string(filepath.Separator) {
		return ferrors.ConfigError("refusing to clean output directory").
			WithContext("path", opts.OutDir).
			UserAction().
			Build()
	}
	if err := config.CheckOutDir(out, opts.Protected()...); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "refusing to clean output directory").
			WithContext("path", out).
			UserAction().
			Build()
	}
	if err := os.RemoveAll(out); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "clean output directory").
			WithContext("path", out).
			Build()
	}
	return nil
}

func (b *Builder) stageRegister(ctx context.Context, bs *buildState) error {
	c := plugin.NewContainer(bs.opts, bs.internals)
	c.SetObserver(b.observeHook)

	for _, name := range b.cfg.Build.Plugins {
		factory, err := b.registry.Get(name)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryConfig, "unknown plugin").
				WithContext("plugin", name).
				UserAction().
				Build()
		}
		if err := c.Register(factory(bs.opts, bs.internals)); err != nil {
			return err
		}
		bs.report.Plugins = append(bs.report.Plugins, name)
	}
	bs.container = c
	bs.opts.Log().DebugContext(ctx, "Plugins registered", "plugins", bs.report.Plugins)
	return nil
}

// observeHook forwards container hook timings to the metrics recorder.
func (b *Builder) observeHook(name string, hook plugin.HookName, _ models.Target, d time.Duration, err error) {
	b.recorder.ObserveHookDuration(name, hook.String(), d)
	b.recorder.IncHookResult(name, hook.String(), resultLabel(err))
}

func (b *Builder) stageTarget(t models.Target) func(context.Context, *buildState) error {
	return func(ctx context.Context, bs *buildState) error {
		log := bs.opts.Log().With(logfields.Target(t.String()))

		subs, err := bs.container.RunBeforeHook(ctx, t)
		if err != nil {
			return fmt.Errorf("%s hooks for %s: %w", plugin.HookBuildBefore, t, err)
		}
		if err := plugin.RunBuildStart(ctx, t, subs); err != nil {
			return err
		}

		bundleOut, err := b.bundler.Generate(ctx, bs.opts, t)
		if err != nil {
			return err
		}
		if err := plugin.RunGenerateBundle(ctx, subs, bundleOut); err != nil {
			return err
		}

		dir := bs.opts.OutputDirFor(t)
		if err := bundle.Write(bundleOut, dir); err != nil {
			return err
		}
		for _, c := range bundleOut.Chunks() {
			if c.IsEntry && c.FacadeModuleID != "" {
				bs.internals.RecordEntryChunk(c.FacadeModuleID, c.FileName)
			}
		}
		if err := plugin.RunWriteBundle(ctx, subs, bundleOut); err != nil {
			return err
		}

		bs.bundles[t] = bundleOut
		bs.report.Chunks[t] = bundleOut.Len()
		b.recorder.SetChunkCount(t.String(), bundleOut.Len())
		log.InfoContext(ctx, "Target built",
			logfields.Chunks(bundleOut.Len()),
			"sub_plugins", len(subs),
			logfields.Path(dir))
		return nil
	}
}

func (b *Builder) stagePost(ctx context.Context, bs *buildState) error {
	if err := bs.container.RunPostHook(ctx, bs.bundles[models.TargetServer], bs.bundles[models.TargetClient]); err != nil {
		return fmt.Errorf("%s hooks: %w", plugin.HookBuildPost, err)
	}
	return nil
}
