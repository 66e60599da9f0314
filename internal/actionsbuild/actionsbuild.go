// Package actionsbuild implements the server-side sub-plugin that discovers
// action definitions and records where the compiled actions entry lands.
package actionsbuild

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuild/internal/build/models"
	ferrors "git.home.luguber.info/inful/sitebuild/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuild/internal/logfields"
	"git.home.luguber.info/inful/sitebuild/internal/plugin"
)

// Name is the sub-plugin name reported to the container.
const Name = "actions:build"

// RoutePrefix is the URL prefix action endpoints are served under.
const RoutePrefix = "/_actions/"

// entryCandidates are tried in order relative to the source directory.
var entryCandidates = []string{
	"actions/index.yaml",
	"actions/index.yml",
	"actions.yaml",
}

var actionName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// entryFile is the on-disk shape of the actions entry module.
type entryFile struct {
	Actions []models.ActionDef `yaml:"actions"`
}

// SubPlugin resolves the actions entry module and tracks its output chunk.
type SubPlugin struct {
	opts      *models.Options
	internals *models.Internals
	entry     string
}

var (
	_ plugin.SubPlugin    = (*SubPlugin)(nil)
	_ plugin.BuildStarter = (*SubPlugin)(nil)
	_ plugin.BundleWriter = (*SubPlugin)(nil)
)

// New creates the actions sub-plugin. It does not touch the filesystem.
func New(opts *models.Options, internals *models.Internals) (plugin.SubPlugin, error) {
	if opts == nil || internals == nil {
		return nil, ferrors.InternalError("actions sub-plugin requires options and internals").Build()
	}
	if opts.SrcDir == "" {
		return nil, ferrors.ConfigError("actions sub-plugin requires a source directory").Build()
	}
	return &SubPlugin{opts: opts, internals: internals}, nil
}

// Name implements plugin.SubPlugin.
func (s *SubPlugin) Name() string { return Name }

// ApplyToTarget implements plugin.SubPlugin.
func (s *SubPlugin) ApplyToTarget(target models.Target) bool {
	return target == models.TargetServer
}

// Entry returns the resolved entry module path, or "" when the project has none.
func (s *SubPlugin) Entry() string { return s.entry }

// BuildStart resolves and loads the actions entry module.
func (s *SubPlugin) BuildStart(ctx context.Context) error {
	entry, err := ResolveEntry(s.opts.SrcDir)
	if err != nil {
		return err
	}
	if entry == "" {
		s.opts.Log().DebugContext(ctx, "No actions entry module found", logfields.Path(s.opts.SrcDir))
		return nil
	}
	defs, err := LoadDefinitions(entry)
	if err != nil {
		return err
	}
	s.entry = entry
	s.internals.SetActions(defs)
	s.opts.Log().InfoContext(ctx, "Loaded action definitions",
		logfields.Path(entry),
		"actions", len(defs))
	return nil
}

// WriteBundle records the output path of the chunk compiled from the entry module.
func (s *SubPlugin) WriteBundle(ctx context.Context, bundle *models.Bundle) error {
	if s.entry == "" {
		return nil
	}
	for _, c := range bundle.Chunks() {
		if c.Type == models.ChunkTypeAsset || c.FacadeModuleID != s.entry {
			continue
		}
		out := filepath.Join(s.opts.OutputDirFor(models.TargetServer), filepath.FromSlash(c.FileName))
		s.internals.SetActionsEntryPoint(out)
		s.opts.Log().DebugContext(ctx, "Recorded actions entry point",
			logfields.Chunk(c.FileName),
			logfields.Path(out))
		return nil
	}
	s.opts.Log().WarnContext(ctx, "Actions entry module was not emitted", logfields.Path(s.entry))
	return nil
}

// Routes returns the endpoint path of every loaded action, sorted by name.
func (s *SubPlugin) Routes() []string {
	return Routes(s.internals.Actions())
}

// Routes maps action definitions to their endpoint paths.
func Routes(defs []models.ActionDef) []string {
	routes := make([]string, 0, len(defs))
	for _, d := range defs {
		routes = append(routes, path.Join(RoutePrefix, d.Name))
	}
	return routes
}

// ResolveEntry returns the first existing actions entry module under srcDir.
func ResolveEntry(srcDir string) (string, error) {
	for _, rel := range entryCandidates {
		p := filepath.Join(srcDir, filepath.FromSlash(rel))
		info, err := os.Stat(p)
		switch {
		case err == nil && info.Mode().IsRegular():
			return p, nil
		case err == nil, os.IsNotExist(err):
			continue
		default:
			return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "stat actions entry").
				WithContext("path", p).
				Build()
		}
	}
	return "", nil
}

// LoadDefinitions reads and validates the action definitions in file.
func LoadDefinitions(file string) ([]models.ActionDef, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read actions entry").
			WithContext("path", file).
			Build()
	}
	return ParseDefinitions(data)
}

// ParseDefinitions decodes and validates an actions entry module.
func ParseDefinitions(data []byte) ([]models.ActionDef, error) {
	var f entryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "parse actions entry").Build()
	}
	for i := range f.Actions {
		if f.Actions[i].Accept == "" {
			f.Actions[i].Accept = models.AcceptForm
		}
	}
	if err := Validate(f.Actions); err != nil {
		return nil, err
	}
	return f.Actions, nil
}

// Validate checks action names and accept modes.
func Validate(defs []models.ActionDef) error {
	seen := make(map[string]struct{}, len(defs))
	for i, d := range defs {
		if !actionName.MatchString(d.Name) {
			return ferrors.ValidationError(fmt.Sprintf("action %d: invalid name %q", i, d.Name)).Build()
		}
		if _, dup := seen[d.Name]; dup {
			return ferrors.ValidationError(fmt.Sprintf("duplicate action %q", d.Name)).Build()
		}
		seen[d.Name] = struct{}{}

		switch d.Accept {
		case models.AcceptForm, models.AcceptJSON:
		default:
			return ferrors.ValidationError(fmt.Sprintf("action %q: unknown accept %q", d.Name, d.Accept)).
				WithContext("valid", "form, json").
				Build()
		}
		for _, in := range d.Input {
			if in.Name == "" {
				return ferrors.ValidationError(fmt.Sprintf("action %q: input without a name", d.Name)).Build()
			}
		}
	}
	return nil
}
