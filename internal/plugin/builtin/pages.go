package builtin

import (
	"context"

	"git.home.luguber.info/inful/sitebuild/internal/build/models"
	"git.home.luguber.info/inful/sitebuild/internal/bundle"
	"git.home.luguber.info/inful/sitebuild/internal/config"
	"git.home.luguber.info/inful/sitebuild/internal/plugin"
)

// PluginPages collects rendered page metadata into the build internals.
// Its sub-plugin runs after user plugins so it sees their bundle edits.
func PluginPages(_ *models.Options, internals *models.Internals) plugin.BuildPlugin {
	return plugin.BuildPlugin{
		Name:    config.PluginPages,
		Targets: []models.Target{models.TargetClient},
		Hooks: map[plugin.HookName]plugin.Hook{
			plugin.HookBuildBefore: plugin.BeforeHook(func(context.Context, plugin.BeforeInput) (plugin.BeforeResult, error) {
				return plugin.BeforeResult{
					Enforce:   plugin.EnforceAfterUserPlugins,
					SubPlugin: &pagesSub{internals: internals},
				}, nil
			}),
		},
	}
}

type pagesSub struct {
	internals *models.Internals
}

func (p *pagesSub) Name() string { return "pages:collect" }

func (p *pagesSub) ApplyToTarget(t models.Target) bool { return t == models.TargetClient }

func (p *pagesSub) GenerateBundle(_ context.Context, b *models.Bundle) error {
	for _, c := range b.Chunks() {
		if c.Meta[bundle.MetaKind] != bundle.KindPage {
			continue
		}
		p.internals.AddPage(models.PageData{
			Route:       c.Meta[bundle.MetaRoute],
			Title:       c.Meta[bundle.MetaTitle],
			Source:      c.FacadeModuleID,
			FileName:    c.FileName,
			Fingerprint: c.Meta[bundle.MetaFingerprint],
		})
	}
	return nil
}
