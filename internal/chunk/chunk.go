// Package chunk splits repository files into overlapping, provenance-carrying
// text units sized for embedding.
package chunk

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bull/codequery/internal/repo"
)

// Chunk is the atomic retrieval unit: a contiguous slice of one file.
type Chunk struct {
	ID        string // deterministic, derived from Path and line range
	Path      string // owning file, repository-relative
	StartLine int    // 1-based, inclusive
	EndLine   int    // 1-based, inclusive
	Text      string
}

// Location formats the chunk's provenance for prompts and source listings.
func (c Chunk) Location() string {
	return fmt.Sprintf("%s (lines %d-%d)", c.Path, c.StartLine, c.EndLine)
}

// Chunker splits file content into line-based windows. Adjacent windows in
// the same file share exactly `overlap` lines so logical units severed at a
// boundary still appear whole in one of the neighbors. Markdown files are
// split at heading boundaries first (see markdown.go); any section longer
// than maxLines falls back to the sliding window.
type Chunker struct {
	maxLines int
	overlap  int
	md       *markdownSplitter
}

// NewChunker creates a chunker producing windows of at most maxLines lines
// overlapping by overlap lines. overlap must be smaller than maxLines.
func NewChunker(maxLines, overlap int) *Chunker {
	return &Chunker{
		maxLines: maxLines,
		overlap:  overlap,
		md:       newMarkdownSplitter(),
	}
}

// ChunkFile splits one file into chunks. Empty content yields zero chunks.
func (c *Chunker) ChunkFile(f repo.File) []Chunk {
	lines := splitLines(f.Content)
	if len(lines) == 0 {
		return nil
	}

	if f.Ext == ".md" || f.Ext == ".markdown" {
		if chunks := c.chunkMarkdown(f.Path, f.Content, lines); chunks != nil {
			return chunks
		}
		// No headings or unparseable: fall through to the sliding window.
	}

	return c.windows(f.Path, lines, 0)
}

// windows applies the sliding window over lines. base is the 0-based line
// offset of lines[0] within the original file.
func (c *Chunker) windows(path string, lines []string, base int) []Chunk {
	var chunks []Chunk
	n := len(lines)
	start := 0
	for start < n {
		end := start + c.maxLines
		if end > n {
			end = n
		}
		text := strings.Join(lines[start:end], "\n")
		if text != "" {
			chunks = append(chunks, c.newChunk(path, base+start+1, base+end, text))
		}
		if end == n {
			break
		}
		start = end - c.overlap
	}
	return chunks
}

// chunkMarkdown splits a markdown file at H1/H2 boundaries. Returns nil when
// the document has no headings, signaling the caller to use the sliding
// window instead.
func (c *Chunker) chunkMarkdown(path, content string, lines []string) []Chunk {
	sections, err := c.md.sections([]byte(content), len(lines))
	if err != nil || len(sections) == 0 {
		return nil
	}

	var chunks []Chunk
	for _, sec := range sections {
		secLines := lines[sec.startLine-1 : sec.endLine]
		if len(secLines) <= c.maxLines {
			text := strings.Join(secLines, "\n")
			if text == "" {
				continue
			}
			chunks = append(chunks, c.newChunk(path, sec.startLine, sec.endLine, text))
			continue
		}
		chunks = append(chunks, c.windows(path, secLines, sec.startLine-1)...)
	}
	return chunks
}

func (c *Chunker) newChunk(path string, startLine, endLine int, text string) Chunk {
	return Chunk{
		ID:        chunkID(path, startLine, endLine),
		Path:      path,
		StartLine: startLine,
		EndLine:   endLine,
		Text:      text,
	}
}

// chunkID derives a stable identifier from the chunk's provenance, so
// re-indexing the same content produces the same IDs.
func chunkID(path string, startLine, endLine int) string {
	name := fmt.Sprintf("codequery://%s#L%d-L%d", path, startLine, endLine)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// splitLines splits content into lines without a phantom trailing element
// for a final newline.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
