package answer

import (
	"fmt"
	"strings"

	"github.com/bull/codequery/internal/retrieve"
)

// preamble is the fixed instruction block of every prompt.
const preamble = `You are a helpful code assistant. Answer the user's question based on the provided code context.

Instructions:
- Answer based on the provided code context
- Be specific and reference file paths when relevant
- If the context doesn't contain enough information, say so
- Provide code examples if helpful
- Be concise but thorough`

// AssembleContext builds the labeled context block from retrieval results.
// Chunks are included in descending similarity order until adding the next
// one would push the total past budget characters; chunks are never split.
// Returns the context text and exactly the chunks that were included, so
// provenance shown to the user matches what the model actually saw.
func AssembleContext(results []retrieve.ScoredChunk, budget int) (string, []retrieve.ScoredChunk) {
	var b strings.Builder
	var included []retrieve.ScoredChunk

	for _, r := range results {
		snippet := fmt.Sprintf("--- %s ---\n%s\n\n", r.Chunk.Location(), r.Chunk.Text)
		if b.Len()+len(snippet) > budget {
			// Dropping lowest-similarity chunks first: results arrive sorted
			// descending, and everything after this one is no closer.
			break
		}
		b.WriteString(snippet)
		included = append(included, r)
	}

	return b.String(), included
}

// buildPrompt assembles the full prompt: preamble, context, verbatim question.
func buildPrompt(question, contextText string) string {
	return fmt.Sprintf(`%s

Context from the codebase:
%s
User Question: %s

Answer:`, preamble, contextText, question)
}
