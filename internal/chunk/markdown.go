package chunk

import (
	"bytes"
	"sort"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"
)

// markdownSplitter finds H1/H2 section boundaries so markdown files can be
// chunked at semantic breaks instead of arbitrary line windows.
type markdownSplitter struct {
	parser goldmark.Markdown
}

func newMarkdownSplitter() *markdownSplitter {
	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
	return &markdownSplitter{parser: md}
}

// section is a heading-delimited slice of the document, 1-based inclusive.
type section struct {
	startLine int
	endLine   int
}

// sections returns the document split at H1 and H2 boundaries, including a
// preamble section for content before the first heading. Returns an empty
// slice when the document has no headings.
func (m *markdownSplitter) sections(source []byte, totalLines int) ([]section, error) {
	reader := text.NewReader(source)
	doc := m.parser.Parser().Parse(reader)

	tree, err := toc.Inspect(doc, source,
		toc.MinDepth(1),
		toc.MaxDepth(2),
		toc.Compact(true),
	)
	if err != nil {
		return nil, err
	}
	if len(tree.Items) == 0 {
		return nil, nil
	}

	// Collect the byte offset of every H1/H2 heading listed in the TOC.
	ids := make(map[string]bool)
	collectIDs(tree.Items, ids)

	var starts []int
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindHeading {
			return ast.WalkContinue, nil
		}
		idAttr, ok := n.AttributeString("id")
		if !ok || !ids[string(idAttr.([]byte))] {
			return ast.WalkContinue, nil
		}
		if n.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}
		starts = append(starts, lineOfOffset(source, n.Lines().At(0).Start))
		return ast.WalkContinue, nil
	})
	if len(starts) == 0 {
		return nil, nil
	}
	sort.Ints(starts)

	var sections []section
	if starts[0] > 1 {
		sections = append(sections, section{startLine: 1, endLine: starts[0] - 1})
	}
	for i, start := range starts {
		end := totalLines
		if i+1 < len(starts) {
			end = starts[i+1] - 1
		}
		if end >= start {
			sections = append(sections, section{startLine: start, endLine: end})
		}
	}
	return sections, nil
}

func collectIDs(items toc.Items, ids map[string]bool) {
	for _, item := range items {
		ids[string(item.ID)] = true
		collectIDs(item.Items, ids)
	}
}

// lineOfOffset converts a byte offset into a 1-based line number.
func lineOfOffset(source []byte, offset int) int {
	if offset > len(source) {
		offset = len(source)
	}
	return 1 + bytes.Count(source[:offset], []byte{'\n'})
}
