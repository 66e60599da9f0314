// Package plugin implements the target-scoped build plugin system.
//
// A BuildPlugin is a declarative descriptor: the targets it applies to and a
// table of lifecycle hooks. Declaring a plugin has no side effects; work only
// happens when the Container invokes a hook. A build:before hook typically
// returns a SubPlugin, which the orchestrator then drives through the bundle
// lifecycle (BuildStart, GenerateBundle, WriteBundle) for that target.
package plugin

import (
	"errors"
	"fmt"
	"slices"

	"git.home.luguber.info/inful/sitebuild/internal/build/models"
)

// BuildPlugin describes which targets a plugin applies to and which hooks it handles.
type BuildPlugin struct {
	// Name is the unique plugin identifier (e.g., "actions", "manifest").
	Name string

	// Targets lists the targets whose hooks this plugin participates in.
	Targets []models.Target

	// Hooks maps lifecycle events to handlers.
	Hooks map[HookName]Hook
}

// Factory builds a plugin descriptor for one build.
type Factory func(opts *models.Options, internals *models.Internals) BuildPlugin

// AppliesTo reports whether the plugin declared target.
func (p BuildPlugin) AppliesTo(target models.Target) bool {
	return slices.Contains(p.Targets, target)
}

// Before returns the build:before handler, if any.
func (p BuildPlugin) Before() (BeforeHook, bool) {
	h, ok := p.Hooks[HookBuildBefore].(BeforeHook)
	return h, ok && h != nil
}

// Post returns the build:post handler, if any.
func (p BuildPlugin) Post() (PostHook, bool) {
	h, ok := p.Hooks[HookBuildPost].(PostHook)
	return h, ok && h != nil
}

// Validate checks the descriptor shape.
func (p BuildPlugin) Validate() error {
	if p.Name == "" {
		return errors.New("plugin name is required")
	}
	if len(p.Targets) == 0 {
		return errors.New("plugin must declare at least one target")
	}
	for _, t := range p.Targets {
		if !t.IsValid() {
			return fmt.Errorf("invalid target: %s", t)
		}
	}
	for name, h := range p.Hooks {
		if !name.IsValid() {
			return fmt.Errorf("invalid hook: %s", name)
		}
		if h == nil {
			return fmt.Errorf("hook %s has no handler", name)
		}
		if h.Event() != name {
			return fmt.Errorf("hook %s registered with a %s handler", name, h.Event())
		}
	}
	return nil
}

// String returns a human-readable representation of the plugin.
func (p BuildPlugin) String() string {
	return fmt.Sprintf("%s %v", p.Name, p.Targets)
}
