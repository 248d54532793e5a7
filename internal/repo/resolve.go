// Package repo supplies repository files for indexing: a local directory
// walker and a GitHub contents-API fetcher behind one Source interface.
package repo

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Source enumerates a repository's indexable files. Implementations report
// file-level problems as skips and reserve errors for whole-repository
// failures.
type Source interface {
	Files(ctx context.Context) ([]File, []Skip, error)
}

// Resolve maps a repository location to a Source. GitHub URLs and bare
// "owner/repo" forms get a GitHubSource; everything else is treated as a
// local directory path.
func Resolve(location string, filter Filter) (Source, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: empty location", ErrUnreachable)
	}

	if owner, name, ok := parseGitHubLocation(location); ok {
		client, err := NewGitHubClient()
		if err != nil {
			return nil, fmt.Errorf("github client: %w", err)
		}
		return NewGitHubSource(client, owner, name, filter), nil
	}

	return NewLocalSource(location, filter), nil
}

// parseGitHubLocation extracts owner and repo from GitHub URL forms:
// https://github.com/owner/repo(.git), github.com/owner/repo, owner/repo.
func parseGitHubLocation(location string) (owner, name string, ok bool) {
	loc := strings.TrimSuffix(strings.TrimSuffix(location, "/"), ".git")

	for _, prefix := range []string{"https://github.com/", "http://github.com/", "github.com/"} {
		if strings.HasPrefix(loc, prefix) {
			loc = strings.TrimPrefix(loc, prefix)
			parts := strings.Split(loc, "/")
			if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
				return parts[0], parts[1], true
			}
			return "", "", false
		}
	}

	// Bare owner/repo form, but only when it cannot be a local path.
	parts := strings.Split(loc, "/")
	if len(parts) == 2 && parts[0] != "" && parts[1] != "" &&
		!strings.HasPrefix(loc, ".") && !strings.HasPrefix(loc, "/") && !pathExists(loc) {
		return parts[0], parts[1], true
	}
	return "", "", false
}

func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
