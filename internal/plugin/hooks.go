package plugin

import (
	"context"

	"git.home.luguber.info/inful/sitebuild/internal/build/models"
)

// HookName identifies a point in the build pipeline at which plugin hooks run.
type HookName string

const (
	// HookBuildBefore runs once per target before that target is bundled.
	// It is where a plugin hands the container a SubPlugin for the target.
	HookBuildBefore HookName = "build:before"

	// HookBuildPost runs once after every target has been written.
	HookBuildPost HookName = "build:post"
)

// IsValid returns true if the hook name is recognized.
func (h HookName) IsValid() bool {
	switch h {
	case HookBuildBefore, HookBuildPost:
		return true
	default:
		return false
	}
}

// String returns the string representation of the hook name.
func (h HookName) String() string {
	return string(h)
}

// Hook is a lifecycle handler. The concrete types are BeforeHook and PostHook;
// each one is only valid under its own HookName.
type Hook interface {
	Event() HookName
}

// Enforce controls where a SubPlugin is placed among the target's sub-plugins.
type Enforce string

const (
	EnforceDefault          Enforce = ""
	EnforceAfterUserPlugins Enforce = "after-user-plugins"
)

// BeforeInput is passed to build:before handlers.
type BeforeInput struct {
	Target models.Target
}

// BeforeResult is returned by build:before handlers.
// A nil SubPlugin, including a typed nil pointer, means the plugin contributes
// nothing to this target.
type BeforeResult struct {
	Enforce   Enforce
	SubPlugin SubPlugin
}

// BeforeHook handles HookBuildBefore.
type BeforeHook func(ctx context.Context, in BeforeInput) (BeforeResult, error)

// Event implements Hook.
func (BeforeHook) Event() HookName { return HookBuildBefore }

// PostInput is passed to build:post handlers. Client is nil in server mode.
type PostInput struct {
	Server *models.Bundle
	Client *models.Bundle
}

// PostHook handles HookBuildPost.
type PostHook func(ctx context.Context, in PostInput) error

// Event implements Hook.
func (PostHook) Event() HookName { return HookBuildPost }
