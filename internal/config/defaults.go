package config

import (
	"slices"
	"time"
)

const (
	DefaultNotifySubject = "sitebuild.builds"
	DefaultDebounce      = 500 * time.Millisecond
	DefaultNotifyTimeout = 5 * time.Second
	DefaultMetricsAddr   = ":9464"
)

// Built-in plugin names, in the order they are registered by default.
const (
	PluginActions     = "actions"
	PluginMiddleware  = "middleware"
	PluginPages       = "pages"
	PluginManifest    = "manifest"
	PluginFormActions = "form-actions"
)

// DefaultPlugins returns the built-in plugin set.
func DefaultPlugins() []string {
	return []string{PluginActions, PluginMiddleware, PluginPages, PluginManifest, PluginFormActions}
}

// ApplyDefaults fills unset fields. It never overrides values present in the file.
func ApplyDefaults(cfg *Config) {
	if cfg.Project.Root == "" {
		cfg.Project.Root = "."
	}
	if cfg.Project.SrcDir == "" {
		cfg.Project.SrcDir = "src"
	}
	if cfg.Project.PublicDir == "" {
		cfg.Project.PublicDir = "public"
	}
	if cfg.Project.OutDir == "" {
		cfg.Project.OutDir = "dist"
	}
	if cfg.Build.Mode == "" {
		cfg.Build.Mode = ModeStatic
	}
	if len(cfg.Build.Plugins) == 0 {
		cfg.Build.Plugins = DefaultPlugins()
	}
	// form-actions validates against the actions manifest, so it goes with it.
	if !cfg.Actions.IsEnabled() {
		cfg.Build.Plugins = slices.DeleteFunc(cfg.Build.Plugins, func(p string) bool {
			return p == PluginActions || p == PluginFormActions
		})
	}
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = DefaultNotifySubject
	}
	if cfg.Notify.Timeout <= 0 {
		cfg.Notify.Timeout = DefaultNotifyTimeout
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = DefaultDebounce
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = DefaultMetricsAddr
	}
}
