package bundle

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/sitebuild/internal/build/models"
	ferrors "git.home.luguber.info/inful/sitebuild/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuild/internal/frontmatter"
)

// PagesDir is the page source directory, relative to the source directory.
const PagesDir = "pages"

const pageTemplate = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s</body>
</html>
`

func (b *Bundler) generateClient(ctx context.Context, opts *models.Options, bundle *models.Bundle) error {
	pagesDir := filepath.Join(opts.SrcDir, PagesDir)
	if err := walkFiles(ctx, pagesDir, func(p, rel string) error {
		if !strings.EqualFold(filepath.Ext(p), ".md") {
			return nil
		}
		c, err := b.renderPage(p, rel)
		if err != nil || c == nil {
			return err
		}
		return addChunk(bundle, c)
	}); err != nil {
		return err
	}

	if opts.PublicDir == "" {
		return nil
	}
	return walkFiles(ctx, opts.PublicDir, func(p, rel string) error {
		data, err := os.ReadFile(p)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "read public file").
				WithContext("path", p).
				Build()
		}
		return addChunk(bundle, &models.Chunk{
			FileName: rel,
			Type:     models.ChunkTypeAsset,
			Code:     data,
			Meta:     map[string]string{MetaKind: KindPublic, MetaSource: p},
		})
	})
}

// renderPage renders one Markdown page into an HTML entry chunk. Drafts yield a nil chunk.
func (b *Bundler) renderPage(p, rel string) (*models.Chunk, error) {
	content, err := os.ReadFile(p)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "read page").
			WithContext("path", p).
			Build()
	}
	page, err := frontmatter.Parse(content)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryBundle, "parse page frontmatter").
			WithContext("path", p).
			Build()
	}
	if page.Meta.Draft {
		return nil, nil
	}

	route := RouteFor(rel)
	title := page.Meta.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
	}

	var rendered bytes.Buffer
	if err := b.md.Convert(page.Body, &rendered); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryBundle, "render page").
			WithContext("path", p).
			Build()
	}
	code := fmt.Appendf(nil, pageTemplate, html.EscapeString(title), rendered.String())

	return &models.Chunk{
		FileName:       FileNameForRoute(route),
		Type:           models.ChunkTypeChunk,
		FacadeModuleID: p,
		IsEntry:        true,
		Code:           code,
		Meta: map[string]string{
			MetaKind:        KindPage,
			MetaRoute:       route,
			MetaTitle:       title,
			MetaSource:      p,
			MetaFingerprint: mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(page.Header), "\n"), string(page.Body)),
		},
	}, nil
}

// walkFiles calls fn for each regular file under root with its slash-separated
// path relative to root. A missing root is not an error.
func walkFiles(ctx context.Context, root string, fn func(p, rel string) error) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		return fn(p, filepath.ToSlash(rel))
	})
	if err == nil || ferrors.IsClassified(err) || ctx.Err() != nil {
		return err
	}
	return ferrors.WrapError(err, ferrors.CategoryFileSystem, "walk source tree").
		WithContext("path", root).
		Build()
}
