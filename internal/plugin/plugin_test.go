package plugin

import (
	"context"
	"errors"
	"testing"

	"git.home.luguber.info/inful/sitebuild/internal/build/models"
)

func noopBefore(context.Context, BeforeInput) (BeforeResult, error) { return BeforeResult{}, nil }
func noopPost(context.Context, PostInput) error                     { return nil }

// TestBuildPluginValidate tests descriptor validation.
func TestBuildPluginValidate(t *testing.T) {
	tests := []struct {
		name      string
		plugin    BuildPlugin
		expectErr bool
	}{
		{
			name: "valid plugin",
			plugin: BuildPlugin{
				Name:    "test-plugin",
				Targets: []models.Target{models.TargetServer},
				Hooks:   map[HookName]Hook{HookBuildBefore: BeforeHook(noopBefore)},
			},
		},
		{
			name:   "no hooks is allowed",
			plugin: BuildPlugin{Name: "inert", Targets: []models.Target{models.TargetClient}},
		},
		{
			name:      "missing name",
			plugin:    BuildPlugin{Targets: []models.Target{models.TargetServer}},
			expectErr: true,
		},
		{
			name:      "missing targets",
			plugin:    BuildPlugin{Name: "x"},
			expectErr: true,
		},
		{
			name:      "invalid target",
			plugin:    BuildPlugin{Name: "x", Targets: []models.Target{"edge"}},
			expectErr: true,
		},
		{
			name: "unknown hook",
			plugin: BuildPlugin{
				Name:    "x",
				Targets: []models.Target{models.TargetServer},
				Hooks:   map[HookName]Hook{"build:done": BeforeHook(noopBefore)},
			},
			expectErr: true,
		},
		{
			name: "handler registered under the wrong event",
			plugin: BuildPlugin{
				Name:    "x",
				Targets: []models.Target{models.TargetServer},
				Hooks:   map[HookName]Hook{HookBuildBefore: PostHook(noopPost)},
			},
			expectErr: true,
		},
		{
			name: "nil handler",
			plugin: BuildPlugin{
				Name:    "x",
				Targets: []models.Target{models.TargetServer},
				Hooks:   map[HookName]Hook{HookBuildPost: nil},
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plugin.Validate()
			if tt.expectErr && err == nil {
				t.Error("expected error but got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// TestHookNameValidation tests hook name validation.
func TestHookNameValidation(t *testing.T) {
	tests := []struct {
		hook     HookName
		expected bool
	}{
		{HookBuildBefore, true},
		{HookBuildPost, true},
		{HookName("build:after"), false},
		{HookName(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.hook), func(t *testing.T) {
			if got := tt.hook.IsValid(); got != tt.expected {
				t.Errorf("IsValid() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

// TestBuildPluginAccessors tests target matching and hook lookup.
func TestBuildPluginAccessors(t *testing.T) {
	p := BuildPlugin{
		Name:    "p",
		Targets: []models.Target{models.TargetServer},
		Hooks:   map[HookName]Hook{HookBuildPost: PostHook(noopPost)},
	}

	if !p.AppliesTo(models.TargetServer) || p.AppliesTo(models.TargetClient) {
		t.Error("AppliesTo should match declared targets only")
	}
	if _, ok := p.Before(); ok {
		t.Error("Before() should report no handler")
	}
	if _, ok := p.Post(); !ok {
		t.Error("Post() should return the handler")
	}
	if p.String() != "p [server]" {
		t.Errorf("String() = %q", p.String())
	}
}

// TestPluginError tests plugin error creation and unwrapping.
func TestPluginError(t *testing.T) {
	baseErr := context.Canceled
	pluginErr := NewPluginError("test-plugin", "build start", baseErr)

	expected := "plugin test-plugin failed during build start: context canceled"
	if pluginErr.Error() != expected {
		t.Errorf("Error() = %q, expected %q", pluginErr.Error(), expected)
	}
	if !errors.Is(pluginErr, baseErr) {
		t.Errorf("expected errors.Is to find %v", baseErr)
	}
}
