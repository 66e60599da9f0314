package bundle

import (
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuild/internal/build/models"
	ferrors "git.home.luguber.info/inful/sitebuild/internal/foundation/errors"
)

// Write writes every chunk of bundle under dir.
func Write(bundle *models.Bundle, dir string) error {
	for _, c := range bundle.Chunks() {
		rel := filepath.FromSlash(c.FileName)
		if filepath.IsAbs(rel) || strings.HasPrefix(filepath.Clean(rel), "..") {
			return ferrors.BundleError("chunk escapes output directory").
				WithContext("chunk", c.FileName).
				Build()
		}
		target := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create chunk directory").
				WithContext("path", filepath.Dir(target)).
				Build()
		}
		if err := os.WriteFile(target, c.Code, 0o644); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write chunk").
				WithContext("path", target).
				Build()
		}
	}
	return nil
}
