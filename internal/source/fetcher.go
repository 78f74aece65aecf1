package source

import (
	"context"
	"fmt"

	"github.com/darmiel/attrgate/internal/config"
	"github.com/darmiel/attrgate/internal/core"
	"github.com/darmiel/attrgate/internal/logging"
)

// Fetcher loads a directory snapshot from an external location.
type Fetcher interface {
	Fetch(ctx context.Context, log logging.InternalLogger) (*core.Directory, error)
}

// New returns the fetcher for the configured source.
func New(src *config.DirectorySource) (Fetcher, error) {
	switch {
	case src == nil:
		return nil, fmt.Errorf("no directory source configured")
	case src.File != nil:
		return NewFileFetcher(*src.File)
	case src.GitHub != nil:
		return NewGitHubFetcher(*src.GitHub)
	default:
		return nil, fmt.Errorf("no valid directory source configured")
	}
}
