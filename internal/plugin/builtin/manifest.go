package builtin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitebuild/internal/actionsbuild"
	"git.home.luguber.info/inful/sitebuild/internal/build/models"
	"git.home.luguber.info/inful/sitebuild/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuild/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuild/internal/logfields"
	"git.home.luguber.info/inful/sitebuild/internal/plugin"
)

// ManifestFile is written to the server output directory.
const ManifestFile = "manifest.json"

// Manifest describes the server build output.
type Manifest struct {
	BuildID              string             `json:"build_id"`
	Mode                 string             `json:"mode"`
	Commit               string             `json:"commit,omitempty"`
	StartedAt            time.Time          `json:"started_at"`
	ActionsEntryPoint    string             `json:"actions_entry_point,omitempty"`
	MiddlewareEntryPoint string             `json:"middleware_entry_point,omitempty"`
	Actions              []models.ActionDef `json:"actions"`
	Routes               []string           `json:"routes"`
	Pages                []models.PageData  `json:"pages"`
	ServerChunks         []string           `json:"server_chunks"`
	ClientChunks         []string           `json:"client_chunks,omitempty"`
}

// PluginManifest writes manifest.json once all targets are built.
func PluginManifest(opts *models.Options, internals *models.Internals) plugin.BuildPlugin {
	return plugin.BuildPlugin{
		Name:    config.PluginManifest,
		Targets: []models.Target{models.TargetServer},
		Hooks: map[plugin.HookName]plugin.Hook{
			plugin.HookBuildPost: plugin.PostHook(func(ctx context.Context, in plugin.PostInput) error {
				return writeManifest(ctx, opts, internals, in)
			}),
		},
	}
}

// BuildManifest assembles the manifest from the build state.
func BuildManifest(opts *models.Options, internals *models.Internals, in plugin.PostInput) Manifest {
	snap := internals.Snapshot()
	return Manifest{
		BuildID:              opts.BuildID,
		Mode:                 opts.Mode.String(),
		Commit:               opts.Commit,
		StartedAt:            opts.StartedAt,
		ActionsEntryPoint:    snap.ActionsEntryPoint,
		MiddlewareEntryPoint: snap.MiddlewareEntryPoint,
		Actions:              snap.Actions,
		Routes:               actionsbuild.Routes(snap.Actions),
		Pages:                snap.Pages,
		ServerChunks:         chunkNames(in.Server),
		ClientChunks:         chunkNames(in.Client),
	}
}

func writeManifest(ctx context.Context, opts *models.Options, internals *models.Internals, in plugin.PostInput) error {
	data, err := json.MarshalIndent(BuildManifest(opts, internals, in), "", "  ")
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "encode manifest").Build()
	}
	dir := opts.OutputDirFor(models.TargetServer)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create server output directory").
			WithContext("path", dir).
			Build()
	}
	p := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(p, append(data, '\n'), 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write manifest").
			WithContext("path", p).
			Build()
	}
	opts.Log().InfoContext(ctx, "Wrote build manifest", logfields.Path(p))
	return nil
}

func chunkNames(b *models.Bundle) []string {
	chunks := b.Chunks()
	if chunks == nil {
		return nil
	}
	names := make([]string, 0, len(chunks))
	for _, c := range chunks {
		names = append(names, c.FileName)
	}
	return names
}
