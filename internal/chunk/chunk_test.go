package chunk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bull/codequery/internal/repo"
)

func pyFile(path string, lineCount int) repo.File {
	lines := make([]string, lineCount)
	for i := range lines {
		lines[i] = fmt.Sprintf("x%d = %d", i+1, i+1)
	}
	content := strings.Join(lines, "\n") + "\n"
	return repo.File{Path: path, Content: content, Size: int64(len(content)), Ext: ".py"}
}

// TestChunkFile_SmallFile tests that a file under the threshold produces a
// single chunk spanning the whole file.
func TestChunkFile_SmallFile(t *testing.T) {
	chunker := NewChunker(100, 20)
	chunks := chunker.ChunkFile(pyFile("small.py", 10))

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].StartLine != 1 || chunks[0].EndLine != 10 {
		t.Errorf("Expected span 1-10, got %d-%d", chunks[0].StartLine, chunks[0].EndLine)
	}
	if !strings.Contains(chunks[0].Text, "x1 = 1") || !strings.Contains(chunks[0].Text, "x10 = 10") {
		t.Errorf("Chunk missing expected content")
	}
}

// TestChunkFile_OverlapAndCoverage verifies the sliding-window invariants:
// no chunk exceeds the threshold, adjacent chunks overlap by exactly the
// configured amount, and the union of spans covers the file.
func TestChunkFile_OverlapAndCoverage(t *testing.T) {
	const maxLines, overlap, total = 100, 20, 250
	chunker := NewChunker(maxLines, overlap)
	chunks := chunker.ChunkFile(pyFile("big.py", total))

	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}

	if chunks[0].StartLine != 1 {
		t.Errorf("First chunk starts at %d, expected 1", chunks[0].StartLine)
	}
	if chunks[len(chunks)-1].EndLine != total {
		t.Errorf("Last chunk ends at %d, expected %d", chunks[len(chunks)-1].EndLine, total)
	}

	for i, c := range chunks {
		if got := c.EndLine - c.StartLine + 1; got > maxLines {
			t.Errorf("Chunk %d spans %d lines, exceeds max %d", i, got, maxLines)
		}
		if c.Text == "" {
			t.Errorf("Chunk %d has empty text", i)
		}
		if i == 0 {
			continue
		}
		prev := chunks[i-1]
		if got := prev.EndLine - c.StartLine + 1; got != overlap {
			t.Errorf("Chunks %d/%d overlap by %d lines, expected %d", i-1, i, got, overlap)
		}
	}
}

// TestChunkFile_Empty tests that empty content yields zero chunks.
func TestChunkFile_Empty(t *testing.T) {
	chunker := NewChunker(100, 20)
	chunks := chunker.ChunkFile(repo.File{Path: "empty.py", Content: "", Ext: ".py"})
	if len(chunks) != 0 {
		t.Errorf("Expected 0 chunks for empty file, got %d", len(chunks))
	}
}

// TestChunkFile_DeterministicIDs tests that identical inputs produce
// identical chunk IDs, and different spans produce different IDs.
func TestChunkFile_DeterministicIDs(t *testing.T) {
	chunker := NewChunker(100, 20)
	f := pyFile("same.py", 250)

	first := chunker.ChunkFile(f)
	second := chunker.ChunkFile(f)

	if len(first) != len(second) {
		t.Fatalf("Chunk counts differ: %d vs %d", len(first), len(second))
	}
	seen := make(map[string]bool)
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("Chunk %d ID differs between runs: %s vs %s", i, first[i].ID, second[i].ID)
		}
		if seen[first[i].ID] {
			t.Errorf("Duplicate chunk ID %s", first[i].ID)
		}
		seen[first[i].ID] = true
	}
}

// TestChunkFile_MarkdownHeadings tests splitting a markdown file at H1/H2
// boundaries with line provenance preserved.
func TestChunkFile_MarkdownHeadings(t *testing.T) {
	input := `# Getting Started

Introduction text here.

## Installation

Install steps here.

## Configuration

Config details here.
`
	chunker := NewChunker(100, 20)
	chunks := chunker.ChunkFile(repo.File{Path: "README.md", Content: input, Ext: ".md"})

	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}

	if !strings.Contains(chunks[0].Text, "Introduction text here") {
		t.Errorf("Chunk 0 missing intro content: %q", chunks[0].Text)
	}
	if !strings.Contains(chunks[1].Text, "## Installation") || !strings.Contains(chunks[1].Text, "Install steps here") {
		t.Errorf("Chunk 1 missing installation section: %q", chunks[1].Text)
	}
	if !strings.Contains(chunks[2].Text, "Config details here") {
		t.Errorf("Chunk 2 missing configuration section: %q", chunks[2].Text)
	}

	if chunks[0].StartLine != 1 {
		t.Errorf("First section starts at line %d, expected 1", chunks[0].StartLine)
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].StartLine != chunks[i-1].EndLine+1 {
			t.Errorf("Section %d starts at %d, expected %d", i, chunks[i].StartLine, chunks[i-1].EndLine+1)
		}
	}
}

// TestChunkFile_MarkdownPreamble tests that content before the first heading
// becomes its own chunk.
func TestChunkFile_MarkdownPreamble(t *testing.T) {
	input := `Some preamble text.
More preamble.

# First Heading

Body.
`
	chunker := NewChunker(100, 20)
	chunks := chunker.ChunkFile(repo.File{Path: "doc.md", Content: input, Ext: ".md"})

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, "Some preamble text") {
		t.Errorf("Preamble chunk missing content: %q", chunks[0].Text)
	}
	if !strings.Contains(chunks[1].Text, "# First Heading") {
		t.Errorf("Heading chunk missing content: %q", chunks[1].Text)
	}
}

// TestChunkFile_MarkdownNoHeadings tests the sliding-window fallback for
// markdown without headings.
func TestChunkFile_MarkdownNoHeadings(t *testing.T) {
	input := "plain text\nwith no headings\nat all\n"
	chunker := NewChunker(100, 20)
	chunks := chunker.ChunkFile(repo.File{Path: "notes.md", Content: input, Ext: ".md"})

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].StartLine != 1 || chunks[0].EndLine != 3 {
		t.Errorf("Expected span 1-3, got %d-%d", chunks[0].StartLine, chunks[0].EndLine)
	}
}

// TestChunkFile_MarkdownOversizedSection tests that a heading section longer
// than the threshold is re-split with the sliding window.
func TestChunkFile_MarkdownOversizedSection(t *testing.T) {
	var b strings.Builder
	b.WriteString("# Big Section\n")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "line %d of the body\n", i+1)
	}

	chunker := NewChunker(10, 2)
	chunks := chunker.ChunkFile(repo.File{Path: "big.md", Content: b.String(), Ext: ".md"})

	if len(chunks) < 2 {
		t.Fatalf("Expected oversized section to split, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if got := c.EndLine - c.StartLine + 1; got > 10 {
			t.Errorf("Chunk %d spans %d lines, exceeds max 10", i, got)
		}
	}
	if chunks[len(chunks)-1].EndLine != 31 {
		t.Errorf("Last chunk ends at %d, expected 31", chunks[len(chunks)-1].EndLine)
	}
}
