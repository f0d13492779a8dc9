// Package fetch retrieves the inputs an approval check needs for one
// pull request: the CODEOWNERS file, the changed paths, and the review
// timeline.
package fetch

import (
	"context"
	"errors"

	"ownergate/internal/review"
)

// ErrNotFound reports that a repository has no CODEOWNERS file in any
// of the locations GitHub recognizes.
var ErrNotFound = errors.New("no CODEOWNERS file found")

// FileChange is one path modified by the pull request. Renamed files
// carry their new path; review obligations follow where the content
// now lives.
type FileChange struct {
	Path string
}

// Source yields the three inputs of a check run. Implementations are
// bound to a single repository and pull request at construction.
type Source interface {
	// CodeownersText returns the raw CODEOWNERS content and the
	// repository path it was found at, or ErrNotFound.
	CodeownersText(ctx context.Context) (text, path string, err error)

	// ChangedFiles lists every file the pull request touches.
	ChangedFiles(ctx context.Context) ([]FileChange, error)

	// Reviews returns the full review timeline, unordered.
	Reviews(ctx context.Context) ([]review.Review, error)
}
