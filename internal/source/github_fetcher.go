package source

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/google/go-github/v80/github"

	"github.com/darmiel/attrgate/internal/config"
	"github.com/darmiel/attrgate/internal/core"
	"github.com/darmiel/attrgate/internal/logging"
)

// GitHubFetcher reads directory files from a GitHub repository.
type GitHubFetcher struct {
	cfg config.GitHubSourceConfig
	gh  *github.Client
}

func NewGitHubFetcher(cfg config.GitHubSourceConfig) (*GitHubFetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid GitHub source config: %w", err)
	}

	gh := github.NewClient(nil).WithAuthToken(cfg.ResolveToken())
	if cfg.ServerURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(cfg.ServerURL, cfg.ServerURL)
		if err != nil {
			return nil, fmt.Errorf("configuring GitHub Enterprise URL: %w", err)
		}
	}
	return &GitHubFetcher{cfg: cfg, gh: gh}, nil
}

// WithClient replaces the GitHub client, e.g. with one pointing to a test server.
func (f *GitHubFetcher) WithClient(gh *github.Client) *GitHubFetcher {
	f.gh = gh
	return f
}

func (f *GitHubFetcher) Fetch(ctx context.Context, logger logging.InternalLogger) (*core.Directory, error) {
	ref := f.cfg.Ref
	if ref == "" {
		ref = "main"
	}
	logger.Info("Starting GitHub source sync for repo %s/%s (ref: %s)", f.cfg.Owner, f.cfg.Repo, ref)

	logger.Debug("Fetching tree for ref %s...", ref)
	tree, _, err := f.gh.Git.GetTree(ctx, f.cfg.Owner, f.cfg.Repo, ref, true)
	if err != nil {
		return nil, fmt.Errorf("get tree failed: %w", err)
	}

	var targetFiles []string
	for _, entry := range tree.Entries {
		p := entry.GetPath()
		if entry.GetType() != "blob" {
			continue
		}
		if f.cfg.Path != "" && !strings.HasPrefix(p, f.cfg.Path) {
			continue
		}
		if isYAML(p) {
			targetFiles = append(targetFiles, p)
		}
	}
	if len(targetFiles) == 0 {
		logger.Warn("No directory files found in %s @ %s", f.cfg.Path, ref)
		return &core.Directory{}, nil
	}

	// merged in path order so the declaration order of roles and groups is stable
	slices.Sort(targetFiles)

	dir := &core.Directory{}
	for i, p := range targetFiles {
		logger.Debug("Downloading %d/%d: %s", i+1, len(targetFiles), p)

		fileContent, _, _, err := f.gh.Repositories.GetContents(ctx, f.cfg.Owner, f.cfg.Repo, p, &github.RepositoryContentGetOptions{
			Ref: ref,
		})
		if err != nil {
			logger.Warn("Failed to download %s: %v", p, err)
			return nil, fmt.Errorf("download %s: %w", p, err)
		}

		content, err := fileContent.GetContent()
		if err != nil {
			logger.Warn("Failed to decode content of %s: %v", p, err)
			return nil, fmt.Errorf("decode content %s: %w", p, err)
		}

		part, err := config.ParseDirectory([]byte(content))
		if err != nil {
			logger.Error("Failed to parse YAML in %s: %v", p, err)
			return nil, fmt.Errorf("syntax error in %s: %w", p, err)
		}
		dir.Merge(part)
	}

	logger.Info("Fetch complete. Loaded %d users from %d files", len(dir.Users), len(targetFiles))
	return dir, nil
}

func isYAML(name string) bool {
	switch path.Ext(name) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
