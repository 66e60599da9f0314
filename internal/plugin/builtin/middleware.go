package builtin

import (
	"context"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuild/internal/build/models"
	"git.home.luguber.info/inful/sitebuild/internal/bundle"
	"git.home.luguber.info/inful/sitebuild/internal/config"
	"git.home.luguber.info/inful/sitebuild/internal/logfields"
	"git.home.luguber.info/inful/sitebuild/internal/plugin"
)

// PluginMiddleware records where the middleware entry chunk is written.
func PluginMiddleware(opts *models.Options, internals *models.Internals) plugin.BuildPlugin {
	return plugin.BuildPlugin{
		Name:    config.PluginMiddleware,
		Targets: []models.Target{models.TargetServer},
		Hooks: map[plugin.HookName]plugin.Hook{
			plugin.HookBuildBefore: plugin.BeforeHook(func(context.Context, plugin.BeforeInput) (plugin.BeforeResult, error) {
				return plugin.BeforeResult{SubPlugin: &middlewareSub{opts: opts, internals: internals}}, nil
			}),
		},
	}
}

type middlewareSub struct {
	opts      *models.Options
	internals *models.Internals
	entry     string
}

func (m *middlewareSub) Name() string { return "middleware:build" }

func (m *middlewareSub) ApplyToTarget(t models.Target) bool { return t == models.TargetServer }

func (m *middlewareSub) BuildStart(context.Context) error {
	m.entry = bundle.MiddlewareEntry(m.opts.SrcDir)
	return nil
}

func (m *middlewareSub) WriteBundle(ctx context.Context, b *models.Bundle) error {
	if m.entry == "" {
		return nil
	}
	for _, c := range b.Chunks() {
		if c.Type != models.ChunkTypeAsset && c.FacadeModuleID == m.entry {
			out := filepath.Join(m.opts.OutputDirFor(models.TargetServer), filepath.FromSlash(c.FileName))
			m.internals.SetMiddlewareEntryPoint(out)
			m.opts.Log().DebugContext(ctx, "Recorded middleware entry point", logfields.Chunk(c.FileName))
			return nil
		}
	}
	return nil
}
