package plugin

import (
	"context"

	"git.home.luguber.info/inful/sitebuild/internal/build/models"
)

// SubPlugin is the per-target delegate returned from a build:before hook.
// The container and adapters treat it as opaque. Only the bundle pipeline
// probes it for the optional stage interfaces below.
type SubPlugin interface {
	Name() string
	ApplyToTarget(target models.Target) bool
}

// BuildStarter runs before the target's bundle is generated.
type BuildStarter interface {
	BuildStart(ctx context.Context) error
}

// BundleGenerator may inspect or mutate the bundle before it is written.
type BundleGenerator interface {
	GenerateBundle(ctx context.Context, bundle *models.Bundle) error
}

// BundleWriter runs after every chunk of the bundle is on disk.
type BundleWriter interface {
	WriteBundle(ctx context.Context, bundle *models.Bundle) error
}

// RunBuildStart invokes BuildStart on every sub-plugin that implements it, in order.
func RunBuildStart(ctx context.Context, target models.Target, subs []SubPlugin) error {
	for _, sp := range subs {
		if !sp.ApplyToTarget(target) {
			continue
		}
		if s, ok := sp.(BuildStarter); ok {
			if err := s.BuildStart(ctx); err != nil {
				return NewPluginError(sp.Name(), "build start", err)
			}
		}
	}
	return nil
}

// RunGenerateBundle invokes GenerateBundle on every sub-plugin that implements it, in order.
func RunGenerateBundle(ctx context.Context, subs []SubPlugin, bundle *models.Bundle) error {
	for _, sp := range subs {
		if !sp.ApplyToTarget(bundle.Target) {
			continue
		}
		if g, ok := sp.(BundleGenerator); ok {
			if err := g.GenerateBundle(ctx, bundle); err != nil {
				return NewPluginError(sp.Name(), "generate bundle", err)
			}
		}
	}
	return nil
}

// RunWriteBundle invokes WriteBundle on every sub-plugin that implements it, in order.
func RunWriteBundle(ctx context.Context, subs []SubPlugin, bundle *models.Bundle) error {
	for _, sp := range subs {
		if !sp.ApplyToTarget(bundle.Target) {
			continue
		}
		if w, ok := sp.(BundleWriter); ok {
			if err := w.WriteBundle(ctx, bundle); err != nil {
				return NewPluginError(sp.Name(), "write bundle", err)
			}
		}
	}
	return nil
}
