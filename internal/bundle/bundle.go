// Package bundle turns a project's source tree into per-target chunk sets and
// writes them to disk.
package bundle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/sitebuild/internal/build/models"
	ferrors "git.home.luguber.info/inful/sitebuild/internal/foundation/errors"
)

// Chunk meta keys.
const (
	MetaKind        = "kind"
	MetaRoute       = "route"
	MetaTitle       = "title"
	MetaFingerprint = "fingerprint"
	MetaSource      = "source"
)

// Chunk kinds recorded under MetaKind.
const (
	KindActions    = "actions"
	KindMiddleware = "middleware"
	KindPage       = "page"
	KindPublic     = "public"
)

// Bundler generates bundles from the source tree described by build options.
type Bundler struct {
	md goldmark.Markdown
}

// New creates a Bundler. Pages may embed raw HTML such as action forms.
func New() *Bundler {
	return &Bundler{md: goldmark.New(goldmark.WithRendererOptions(html.WithUnsafe()))}
}

// Generate produces the bundle for target.
func (b *Bundler) Generate(ctx context.Context, opts *models.Options, target models.Target) (*models.Bundle, error) {
	bundle := models.NewBundle(target)
	var err error
	switch target {
	case models.TargetServer:
		err = b.generateServer(ctx, opts, bundle)
	case models.TargetClient:
		err = b.generateClient(ctx, opts, bundle)
	default:
		err = ferrors.ValidationError(fmt.Sprintf("unknown target %q", target)).Build()
	}
	if err != nil {
		return nil, err
	}
	return bundle, nil
}

func addChunk(bundle *models.Bundle, c *models.Chunk) error {
	if err := bundle.Add(c); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryBundle, "add chunk").
			WithContext("chunk", c.FileName).
			WithContext("module", c.FacadeModuleID).
			Build()
	}
	return nil
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:8]
}
