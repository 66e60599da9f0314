package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for values the build cannot work with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("configuration is nil")
	}
	if !buildModeNormalizer.Valid(cfg.Build.Mode) {
		return fmt.Errorf("invalid build mode: %s", cfg.Build.Mode)
	}
	if err := CheckOutDir(cfg.OutPath(), cfg.protectedPaths()...); err != nil {
		return err
	}

	seen := make(map[string]bool, len(cfg.Build.Plugins))
	for _, name := range cfg.Build.Plugins {
		if name == "" {
			return errors.New("plugin name cannot be empty")
		}
		if seen[name] {
			return fmt.Errorf("duplicate plugin: %s", name)
		}
		seen[name] = true
	}

	if cfg.Notify.Retries < 0 {
		return errors.New("notify.retries must not be negative")
	}
	if cfg.Watch.Interval < 0 {
		return errors.New("watch.interval must not be negative")
	}
	if cfg.Watch.Interval > 0 && cfg.Watch.Interval < cfg.Watch.Debounce {
		return fmt.Errorf("watch.interval (%s) must not be shorter than watch.debounce (%s)", cfg.Watch.Interval, cfg.Watch.Debounce)
	}
	return nil
}
