// Package builtin registers the build plugins that ship with sitebuild.
package builtin

import (
	"git.home.luguber.info/inful/sitebuild/internal/config"
	"git.home.luguber.info/inful/sitebuild/internal/plugin"
	"git.home.luguber.info/inful/sitebuild/internal/plugin/actions"
)

// Factories returns the built-in plugin factories in default build order.
func Factories() map[string]plugin.Factory {
	return map[string]plugin.Factory{
		config.PluginActions:     actions.PluginActions,
		config.PluginMiddleware:  PluginMiddleware,
		config.PluginPages:       PluginPages,
		config.PluginManifest:    PluginManifest,
		config.PluginFormActions: PluginFormActions,
	}
}

// Register adds every built-in plugin to reg.
func Register(reg *plugin.Registry) error {
	factories := Factories()
	for _, name := range config.DefaultPlugins() {
		if err := reg.Register(name, factories[name]); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in plugins.
func NewRegistry() (*plugin.Registry, error) {
	reg := plugin.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
