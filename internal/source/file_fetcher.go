package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/darmiel/attrgate/internal/config"
	"github.com/darmiel/attrgate/internal/core"
	"github.com/darmiel/attrgate/internal/logging"
)

// FileFetcher reads a directory from a single YAML file or from every
// YAML file of a local folder, merged in lexical order.
type FileFetcher struct {
	cfg config.FileSourceConfig
}

func NewFileFetcher(cfg config.FileSourceConfig) (*FileFetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid file source config: %w", err)
	}
	return &FileFetcher{cfg: cfg}, nil
}

func (f *FileFetcher) Fetch(ctx context.Context, logger logging.InternalLogger) (*core.Directory, error) {
	info, err := os.Stat(f.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", f.cfg.Path, err)
	}

	paths := []string{f.cfg.Path}
	if info.IsDir() {
		entries, err := os.ReadDir(f.cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", f.cfg.Path, err)
		}
		paths = paths[:0]
		for _, e := range entries {
			if e.IsDir() || !isYAML(e.Name()) {
				continue
			}
			paths = append(paths, filepath.Join(f.cfg.Path, e.Name()))
		}
		slices.Sort(paths)
	}

	dir := &core.Directory{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		part, err := config.LoadDirectory(path)
		if err != nil {
			logger.Error("Failed to load %s: %v", path, err)
			return nil, err
		}
		dir.Merge(part)
		logger.Debug("Loaded %s: %d users, %d roles, %d groups", path, len(part.Users), len(part.Roles), len(part.Groups))
	}

	logger.Info("Fetch complete. Loaded %d files", len(paths))
	return dir, nil
}
