package bundle

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuild/internal/actionsbuild"
	"git.home.luguber.info/inful/sitebuild/internal/build/models"
	ferrors "git.home.luguber.info/inful/sitebuild/internal/foundation/errors"
)

// MiddlewareFile is the middleware entry module, relative to the source directory.
const MiddlewareFile = "middleware.yaml"

// MiddlewareEntry returns the middleware entry module under srcDir, or "" when absent.
func MiddlewareEntry(srcDir string) string {
	p := filepath.Join(srcDir, MiddlewareFile)
	if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
		return p
	}
	return ""
}

func (b *Bundler) generateServer(ctx context.Context, opts *models.Options, bundle *models.Bundle) error {
	var actionsEntry string
	if !opts.ActionsDisabled {
		var err error
		if actionsEntry, err = actionsbuild.ResolveEntry(opts.SrcDir); err != nil {
			return err
		}
	}
	entries := []struct {
		path string
		kind string
	}{
		{actionsEntry, KindActions},
		{MiddlewareEntry(opts.SrcDir), KindMiddleware},
	}
	for _, e := range entries {
		if e.path == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		c, err := compileEntry(e.path, e.kind)
		if err != nil {
			return err
		}
		if err := addChunk(bundle, c); err != nil {
			return err
		}
	}
	return nil
}

// compileEntry converts a YAML entry module into a JSON chunk.
func compileEntry(path, kind string) (*models.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read entry module").
			WithContext("path", path).
			Build()
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryBundle, "parse entry module").
			WithContext("path", path).
			Build()
	}
	code, err := json.Marshal(doc)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryBundle, "compile entry module").
			WithContext("path", path).
			Build()
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &models.Chunk{
		FileName:       "chunks/" + base + "_" + contentHash(code) + ".json",
		Type:           models.ChunkTypeChunk,
		FacadeModuleID: path,
		IsEntry:        true,
		Code:           code,
		Meta:           map[string]string{MetaKind: kind},
	}, nil
}
