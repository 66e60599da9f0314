// Package git resolves repository metadata for build stamping.
package git

import (
	"errors"

	ggit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	ferrors "git.home.luguber.info/inful/sitebuild/internal/foundation/errors"
)

// HeadCommit returns the HEAD commit hash of the repository containing path.
// It returns "" without error when path is not inside a repository or the
// repository has no commits yet.
func HeadCommit(path string) (string, error) {
	repo, err := ggit.PlainOpenWithOptions(path, &ggit.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, ggit.ErrRepositoryNotExists) {
		return "", nil
	}
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "open git repository").
			WithContext("path", path).
			Build()
	}

	ref, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", nil
	}
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "resolve HEAD").
			WithContext("path", path).
			Build()
	}
	return ref.Hash().String(), nil
}

// Short abbreviates a commit hash for display.
func Short(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
