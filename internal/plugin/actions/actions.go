// Package actions provides the build plugin that attaches the actions
// sub-plugin to the server target.
package actions

import (
	"context"

	"git.home.luguber.info/inful/sitebuild/internal/actionsbuild"
	"git.home.luguber.info/inful/sitebuild/internal/build/models"
	"git.home.luguber.info/inful/sitebuild/internal/config"
	"git.home.luguber.info/inful/sitebuild/internal/plugin"
)

// Name is the plugin name used in configuration and the registry.
const Name = config.PluginActions

// SubPluginFactory builds the sub-plugin handed to the container.
type SubPluginFactory func(opts *models.Options, internals *models.Internals) (plugin.SubPlugin, error)

// NewPluginActions returns a plugin factory that defers to factory on build:before.
func NewPluginActions(factory SubPluginFactory) plugin.Factory {
	return func(opts *models.Options, internals *models.Internals) plugin.BuildPlugin {
		return plugin.BuildPlugin{
			Name:    Name,
			Targets: []models.Target{models.TargetServer},
			Hooks: map[plugin.HookName]plugin.Hook{
				plugin.HookBuildBefore: plugin.BeforeHook(func(context.Context, plugin.BeforeInput) (plugin.BeforeResult, error) {
					sp, err := factory(opts, internals)
					if err != nil {
						return plugin.BeforeResult{}, err
					}
					return plugin.BeforeResult{SubPlugin: sp}, nil
				}),
			},
		}
	}
}

// PluginActions is the actions build plugin backed by actionsbuild.New.
func PluginActions(opts *models.Options, internals *models.Internals) plugin.BuildPlugin {
	return NewPluginActions(actionsbuild.New)(opts, internals)
}
