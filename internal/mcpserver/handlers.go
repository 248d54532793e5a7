package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/codequery/internal/engine"
	"github.com/bull/codequery/internal/retrieve"
)

// previewLen caps the snippet preview attached to search results.
const previewLen = 200

// makeLoadHandler creates the load_repository tool handler.
func makeLoadHandler(eng *engine.Engine) func(
	context.Context, *mcp.CallToolRequest, LoadRepositoryInput,
) (*mcp.CallToolResult, LoadRepositoryOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input LoadRepositoryInput) (
		*mcp.CallToolResult, LoadRepositoryOutput, error,
	) {
		result, err := eng.Load(ctx, input.Location)
		if err != nil {
			return nil, LoadRepositoryOutput{}, fmt.Errorf("load failed: %w", err)
		}

		skipped := make([]SkippedFile, len(result.Skipped))
		for i, s := range result.Skipped {
			skipped[i] = SkippedFile{Path: s.Path, Reason: s.Reason}
		}

		return nil, LoadRepositoryOutput{
			Location:   result.Location,
			Files:      result.Files,
			Chunks:     result.Chunks,
			Skipped:    skipped,
			DurationMs: result.Duration.Milliseconds(),
		}, nil
	}
}

// makeAskHandler creates the ask_codebase tool handler.
func makeAskHandler(eng *engine.Engine) func(
	context.Context, *mcp.CallToolRequest, AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (
		*mcp.CallToolResult, AskOutput, error,
	) {
		ans, err := eng.Ask(ctx, input.Question, input.TopK)
		if err != nil {
			return nil, AskOutput{}, fmt.Errorf("ask failed: %w", err)
		}

		return nil, AskOutput{
			Answer:  ans.Text,
			Sources: toSources(ans.Sources, false),
		}, nil
	}
}

// makeSearchHandler creates the search_code tool handler: retrieval only, no
// language-model call.
func makeSearchHandler(eng *engine.Engine) func(
	context.Context, *mcp.CallToolRequest, SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (
		*mcp.CallToolResult, SearchOutput, error,
	) {
		results, err := eng.Search(ctx, input.Query, input.MaxResults)
		if err != nil {
			return nil, SearchOutput{}, fmt.Errorf("search failed: %w", err)
		}

		if len(results) == 0 {
			return nil, SearchOutput{
				Results: []Source{},
				Message: "No matching code found. Try broader search terms.",
			}, nil
		}
		return nil, SearchOutput{Results: toSources(results, true)}, nil
	}
}

// makeStatusHandler creates the index_status tool handler.
func makeStatusHandler(eng *engine.Engine) func(
	context.Context, *mcp.CallToolRequest, StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (
		*mcp.CallToolResult, StatusOutput, error,
	) {
		status := eng.Status()
		return nil, StatusOutput{
			Loaded:   status.Loaded,
			Location: status.Location,
			Files:    status.Files,
			Chunks:   status.Chunks,
			LoadedAt: status.LoadedAt,
		}, nil
	}
}

func toSources(results []retrieve.ScoredChunk, withPreview bool) []Source {
	sources := make([]Source, len(results))
	for i, r := range results {
		s := Source{
			Path:      r.Chunk.Path,
			StartLine: r.Chunk.StartLine,
			EndLine:   r.Chunk.EndLine,
			Score:     r.Score,
		}
		if withPreview {
			preview := r.Chunk.Text
			if len(preview) > previewLen {
				preview = preview[:previewLen] + "..."
			}
			s.Preview = preview
		}
		sources[i] = s
	}
	return sources
}
