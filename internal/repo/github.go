package repo

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v81/github"
)

// GitHubSource fetches a repository's files through the GitHub contents API.
type GitHubSource struct {
	client *github.Client
	owner  string
	repo   string
	filter Filter
}

// NewGitHubClient creates a GitHub client with automatic rate-limit waits.
// If GITHUB_TOKEN is set the client is authenticated, which raises the
// primary rate limit from 60 to 5000 requests per hour.
func NewGitHubClient() (*github.Client, error) {
	rateLimiter, err := github_ratelimit.NewRateLimitWaiterClient(nil)
	if err != nil {
		return nil, err
	}

	client := github.NewClient(rateLimiter)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		client = client.WithAuthToken(token)
	}
	return client, nil
}

// NewGitHubSource creates a source over the given owner/repo.
func NewGitHubSource(client *github.Client, owner, repo string, filter Filter) *GitHubSource {
	return &GitHubSource{client: client, owner: owner, repo: repo, filter: filter}
}

// Files lists the full repository tree, fetches each indexable file, and
// returns contents plus skip warnings. An unreachable or private repository
// wraps ErrUnreachable.
func (s *GitHubSource) Files(ctx context.Context) ([]File, []Skip, error) {
	var files []File
	var skips []Skip

	if err := s.fetchDir(ctx, "", &files, &skips); err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, skips, ErrNoIndexableFiles
	}
	return files, skips, nil
}

// fetchDir recursively traverses a directory of the repository.
func (s *GitHubSource) fetchDir(ctx context.Context, dir string, files *[]File, skips *[]Skip) error {
	_, dirContents, _, err := s.client.Repositories.GetContents(ctx, s.owner, s.repo, dir, nil)
	if err != nil {
		if dir == "" {
			return fmt.Errorf("%w: %s/%s: %v", ErrUnreachable, s.owner, s.repo, err)
		}
		// A subdirectory that vanished mid-walk is a skip, not a failure.
		*skips = append(*skips, Skip{Path: dir, Reason: "unreadable: " + err.Error()})
		return nil
	}

	for _, item := range dirContents {
		if item.Type == nil || item.Name == nil {
			continue
		}
		itemPath := path.Join(dir, *item.Name)

		switch *item.Type {
		case "dir":
			if s.filter.ExcludedDir(*item.Name) {
				continue
			}
			if err := s.fetchDir(ctx, itemPath, files, skips); err != nil {
				return err
			}

		case "file":
			size := int64(item.GetSize())
			if reason := s.filter.Check(itemPath, size); reason != "" {
				*skips = append(*skips, Skip{Path: itemPath, Reason: reason})
				continue
			}
			content, err := s.fetchFile(ctx, itemPath)
			if err != nil {
				*skips = append(*skips, Skip{Path: itemPath, Reason: "unreadable: " + err.Error()})
				continue
			}
			if reason := s.filter.CheckContent(content); reason != "" {
				*skips = append(*skips, Skip{Path: itemPath, Reason: reason})
				continue
			}
			*files = append(*files, File{
				Path:    itemPath,
				Content: string(content),
				Size:    size,
				Ext:     strings.ToLower(path.Ext(itemPath)),
			})
		}
	}
	return nil
}

// fetchFile downloads and decodes one file's content.
func (s *GitHubSource) fetchFile(ctx context.Context, filePath string) ([]byte, error) {
	fileContent, _, _, err := s.client.Repositories.GetContents(ctx, s.owner, s.repo, filePath, nil)
	if err != nil {
		return nil, err
	}
	if fileContent == nil || fileContent.Content == nil {
		return nil, fmt.Errorf("no content returned for %s", filePath)
	}
	content, err := base64.StdEncoding.DecodeString(
		strings.ReplaceAll(*fileContent.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filePath, err)
	}
	return content, nil
}
