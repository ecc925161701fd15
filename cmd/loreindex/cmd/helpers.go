package cmd

import (
	"os"
	"path/filepath"

	"github.com/loreindex/loreindex/internal/config"
	"github.com/loreindex/loreindex/internal/embed"
	lierrors "github.com/loreindex/loreindex/internal/errors"
	"github.com/loreindex/loreindex/internal/exclude"
)

// resolveProjectRoot resolves the --project flag to an absolute path.
func resolveProjectRoot() (string, error) {
	root, err := filepath.Abs(projectDir)
	if err != nil {
		return "", lierrors.New(lierrors.ErrCodeInvalidInput, "cannot resolve project directory", err)
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return "", lierrors.Newf(lierrors.ErrCodeInvalidInput, "not a project directory: %s", root)
	}
	return root, nil
}

// loadProject resolves the project root and its configuration.
func loadProject() (string, *config.Config, error) {
	root, err := resolveProjectRoot()
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return "", nil, err
	}
	return root, cfg, nil
}

// newEmbedClient builds the embedding client for a project.
//
// With --offline the deterministic static embedder is used; otherwise
// semantic search must be enabled and credentialed, and an absent
// credential reads as "feature disabled" rather than a hard error.
func newEmbedClient(cfg *config.Config, offline bool) (embed.Client, error) {
	if offline {
		return embed.NewStaticClient(), nil
	}

	if !cfg.SearchAvailable() {
		return nil, lierrors.Newf(lierrors.ErrCodeSearchDisabled,
			"semantic search is disabled: set search.enabled and search.api_key in %s, or pass --offline",
			config.FileName)
	}

	apiKey, err := cfg.ResolveAPIKey()
	if err != nil {
		return nil, err
	}

	return embed.NewCached(
		embed.NewVoyageClient(apiKey, cfg.Search.Model),
		embed.DefaultQueryCacheSize,
	), nil
}

// excludedMatcher compiles the configured context exclusions plus any
// extra patterns from the command line.
func excludedMatcher(cfg *config.Config, extra []string) *exclude.Matcher {
	patterns := append(append([]string(nil), cfg.Search.ExcludedPaths...), extra...)
	return exclude.New(patterns)
}
