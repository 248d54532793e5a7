package repo

import (
	"bytes"
	"path"
	"strings"
)

// File is one readable source file from a repository. Files exist only long
// enough to be chunked; nothing retains them afterwards.
type File struct {
	Path    string // repository-relative, slash-separated
	Content string
	Size    int64
	Ext     string // lowercased extension including the dot, e.g. ".go"
}

// Skip records a file that was left out of the index and why. Skips are
// warnings reported alongside a successful load, never load failures.
type Skip struct {
	Path   string
	Reason string
}

// codeExtensions is the allowlist of file types worth indexing.
var codeExtensions = map[string]bool{
	".py": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".java": true, ".cpp": true, ".c": true, ".h": true, ".cs": true,
	".go": true, ".rs": true, ".php": true, ".rb": true, ".swift": true,
	".kt": true, ".scala": true, ".r": true, ".m": true, ".sh": true,
	".bash": true, ".sql": true, ".html": true, ".css": true, ".vue": true,
	".json": true, ".yaml": true, ".yml": true, ".xml": true, ".md": true,
	".markdown": true, ".txt": true, ".toml": true, ".proto": true,
}

// excludedDirs are directory names skipped during traversal: dependency
// trees, build output, and VCS internals.
var excludedDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true, "__pycache__": true,
	"venv": true, "env": true, "dist": true, "build": true, "target": true,
	".idea": true, ".vscode": true,
}

// Filter decides which repository files are indexable.
type Filter struct {
	// MaxFileSize in bytes; larger files are skipped.
	MaxFileSize int64
}

// ExcludedDir reports whether a directory name should be pruned entirely.
func (f Filter) ExcludedDir(name string) bool {
	return excludedDirs[name] || strings.HasPrefix(name, ".")
}

// Check returns a non-empty skip reason if the file at relPath with the given
// size should not be indexed, before its content is read.
func (f Filter) Check(relPath string, size int64) string {
	base := path.Base(relPath)
	if strings.HasPrefix(base, ".") {
		return "hidden file"
	}
	ext := strings.ToLower(path.Ext(base))
	if !codeExtensions[ext] {
		return "unsupported extension"
	}
	if size > f.MaxFileSize {
		return "exceeds max file size"
	}
	return ""
}

// CheckContent returns a non-empty skip reason for content-level problems.
// A NUL byte in the leading bytes marks the file binary, same heuristic git
// uses.
func (f Filter) CheckContent(content []byte) string {
	if len(bytes.TrimSpace(content)) == 0 {
		return "empty file"
	}
	probe := content
	if len(probe) > 8000 {
		probe = probe[:8000]
	}
	if bytes.IndexByte(probe, 0) >= 0 {
		return "binary file"
	}
	return ""
}
