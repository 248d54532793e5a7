// Package mcpserver exposes the question-answering pipeline as MCP tools.
package mcpserver

import "time"

// LoadRepositoryInput defines the input parameters for the load_repository tool.
type LoadRepositoryInput struct {
	// Location is a GitHub URL, an owner/repo form, or a local directory path.
	Location string `json:"location" jsonschema:"required,description=Repository location: GitHub URL or local directory path"`
}

// LoadRepositoryOutput reports the result of indexing a repository.
type LoadRepositoryOutput struct {
	Location string `json:"location"`
	// Files is the number of files indexed.
	Files int `json:"files"`
	// Chunks is the number of chunks in the vector index.
	Chunks int `json:"chunks"`
	// Skipped lists files excluded from the index with reasons.
	Skipped []SkippedFile `json:"skipped,omitempty"`
	// DurationMs is the total load time in milliseconds.
	DurationMs int64 `json:"duration_ms"`
}

// SkippedFile is one file left out of the index.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// AskInput defines the input parameters for the ask_codebase tool.
type AskInput struct {
	// Question is the natural-language question about the loaded repository.
	Question string `json:"question" jsonschema:"required,description=Natural-language question about the loaded repository"`
	// TopK overrides the number of chunks retrieved as context.
	TopK int `json:"top_k,omitempty" jsonschema:"minimum=1,maximum=50,description=Number of chunks to retrieve as context"`
}

// AskOutput contains the synthesized answer and its provenance.
type AskOutput struct {
	Answer string `json:"answer"`
	// Sources lists exactly the chunks that were in the prompt.
	Sources []Source `json:"sources"`
}

// Source is the provenance of one chunk used to answer a question.
type Source struct {
	Path      string  `json:"path"`
	StartLine int     `json:"start_line"`
	EndLine   int     `json:"end_line"`
	Score     float32 `json:"score"`
	// Preview is the first part of the chunk text.
	Preview string `json:"preview,omitempty"`
}

// SearchInput defines the input parameters for the search_code tool.
type SearchInput struct {
	// Query is the semantic search query.
	Query string `json:"query" jsonschema:"required,description=Semantic search query over the loaded repository"`
	// MaxResults is the maximum number of chunks to return.
	MaxResults int `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=50,default=8,description=Maximum number of chunks to return"`
}

// SearchOutput contains raw retrieval results without answer synthesis.
type SearchOutput struct {
	Results []Source `json:"results"`
	Message string   `json:"message,omitempty"`
}

// StatusInput defines the input parameters for the index_status tool.
// The tool takes no parameters.
type StatusInput struct{}

// StatusOutput describes the currently loaded index.
type StatusOutput struct {
	Loaded   bool      `json:"loaded"`
	Location string    `json:"location,omitempty"`
	Files    int       `json:"files,omitempty"`
	Chunks   int       `json:"chunks,omitempty"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
}
