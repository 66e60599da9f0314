package plugin

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"git.home.luguber.info/inful/sitebuild/internal/build/models"
	"git.home.luguber.info/inful/sitebuild/internal/logfields"
)

// HookObserver is notified after every hook invocation.
type HookObserver func(pluginName string, hook HookName, target models.Target, d time.Duration, err error)

// Container holds the plugins registered for one build and invokes their hooks.
//
// Hooks run sequentially in registration order, which is what lets plugins
// mutate the shared Internals without locking of their own.
type Container struct {
	opts      *models.Options
	internals *models.Internals
	plugins   []BuildPlugin
	names     map[string]bool
	ran       map[models.Target]bool
	postRan   bool
	observer  HookObserver
}

// NewContainer creates an empty container bound to one build.
func NewContainer(opts *models.Options, internals *models.Internals) *Container {
	return &Container{
		opts:      opts,
		internals: internals,
		names:     make(map[string]bool),
		ran:       make(map[models.Target]bool),
	}
}

// Options returns the build options the container was created with.
func (c *Container) Options() *models.Options { return c.opts }

// Internals returns the shared build state.
func (c *Container) Internals() *models.Internals { return c.internals }

// SetObserver installs a hook observer.
func (c *Container) SetObserver(o HookObserver) { c.observer = o }

// Register adds a plugin. Names must be unique within a container.
func (c *Container) Register(p BuildPlugin) error {
	if err := p.Validate(); err != nil {
		return NewPluginError(p.Name, "register", err)
	}
	if c.names[p.Name] {
		return NewPluginError(p.Name, "register", fmt.Errorf("plugin %s already registered", p.Name))
	}
	c.names[p.Name] = true
	c.plugins = append(c.plugins, p)
	return nil
}

// Plugins returns the registered plugins in registration order.
func (c *Container) Plugins() []BuildPlugin {
	out := make([]BuildPlugin, len(c.plugins))
	copy(out, c.plugins)
	return out
}

// RunBeforeHook invokes build:before on every plugin that applies to target and
// collects the returned sub-plugins. Sub-plugins enforced "after-user-plugins"
// are placed after all others; within each group registration order is kept.
//
// Each target may be run once per container. A handler error stops the run
// and is returned exactly as the handler produced it.
func (c *Container) RunBeforeHook(ctx context.Context, target models.Target) ([]SubPlugin, error) {
	if !target.IsValid() {
		return nil, fmt.Errorf("invalid target: %s", target)
	}
	if c.ran[target] {
		return nil, fmt.Errorf("build:before already ran for target %s", target)
	}
	c.ran[target] = true

	var normal, last []SubPlugin
	for _, p := range c.plugins {
		if !p.AppliesTo(target) {
			continue
		}
		hook, ok := p.Before()
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		res, err := hook(ctx, BeforeInput{Target: target})
		c.observe(p.Name, HookBuildBefore, target, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		if isNil(res.SubPlugin) {
			continue
		}

		c.opts.Log().Debug("Sub-plugin attached",
			logfields.Plugin(p.Name),
			logfields.SubPlugin(res.SubPlugin.Name()),
			logfields.Target(string(target)))

		if res.Enforce == EnforceAfterUserPlugins {
			last = append(last, res.SubPlugin)
		} else {
			normal = append(normal, res.SubPlugin)
		}
	}
	return append(normal, last...), nil
}

// RunPostHook invokes build:post on every plugin that handles it. It runs once per container.
func (c *Container) RunPostHook(ctx context.Context, server, client *models.Bundle) error {
	if c.postRan {
		return fmt.Errorf("build:post already ran")
	}
	c.postRan = true

	in := PostInput{Server: server, Client: client}
	for _, p := range c.plugins {
		hook, ok := p.Post()
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		err := hook(ctx, in)
		c.observe(p.Name, HookBuildPost, "", time.Since(start), err)
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) observe(name string, hook HookName, target models.Target, d time.Duration, err error) {
	attrs := []any{
		logfields.Plugin(name),
		logfields.Hook(string(hook)),
		logfields.DurationMS(float64(d.Microseconds()) / 1000),
	}
	if target != "" {
		attrs = append(attrs, logfields.Target(string(target)))
	}
	if err != nil {
		c.opts.Log().Error("Plugin hook failed", append(attrs, logfields.Error(err))...)
	} else {
		c.opts.Log().Debug("Plugin hook completed", attrs...)
	}
	if c.observer != nil {
		c.observer(name, hook, target, d, err)
	}
}

// isNil also catches a typed nil pointer stored in the interface, such as a
// factory returning (*T)(nil).
func isNil(sp SubPlugin) bool {
	if sp == nil {
		return true
	}
	v := reflect.ValueOf(sp)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
