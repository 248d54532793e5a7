package repo

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalSource reads files from a directory on disk.
type LocalSource struct {
	root   string
	filter Filter
}

// NewLocalSource creates a source over the given directory.
func NewLocalSource(root string, filter Filter) *LocalSource {
	return &LocalSource{root: root, filter: filter}
}

// Files walks the directory tree and returns every indexable file plus the
// list of files skipped by the filter. A missing or unreadable root wraps
// ErrUnreachable; individual unreadable files become skips.
func (s *LocalSource) Files(ctx context.Context) ([]File, []Skip, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s is not a directory", ErrUnreachable, s.root)
	}

	var files []File
	var skips []Skip

	err = filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			skips = append(skips, Skip{Path: p, Reason: "unreadable: " + err.Error()})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != s.root && s.filter.ExcludedDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			rel = p
		}
		rel = filepath.ToSlash(rel)

		fi, err := d.Info()
		if err != nil {
			skips = append(skips, Skip{Path: rel, Reason: "unreadable: " + err.Error()})
			return nil
		}
		if reason := s.filter.Check(rel, fi.Size()); reason != "" {
			skips = append(skips, Skip{Path: rel, Reason: reason})
			return nil
		}

		content, err := os.ReadFile(p)
		if err != nil {
			skips = append(skips, Skip{Path: rel, Reason: "unreadable: " + err.Error()})
			return nil
		}
		if reason := s.filter.CheckContent(content); reason != "" {
			skips = append(skips, Skip{Path: rel, Reason: reason})
			return nil
		}

		files = append(files, File{
			Path:    rel,
			Content: string(content),
			Size:    fi.Size(),
			Ext:     strings.ToLower(filepath.Ext(rel)),
		})
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", s.root, err)
	}

	if len(files) == 0 {
		return nil, skips, ErrNoIndexableFiles
	}
	return files, skips, nil
}
