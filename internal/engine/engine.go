// Package engine orchestrates the pipeline: walk repository files, chunk,
// embed, build the vector index, and answer questions against it. One
// session is live at a time; loading a repository builds a complete new
// session and swaps it in atomically, so a failed load leaves the previous
// session fully usable and concurrent questions never observe a partial
// index.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bull/codequery/internal/answer"
	"github.com/bull/codequery/internal/chunk"
	"github.com/bull/codequery/internal/config"
	"github.com/bull/codequery/internal/index"
	"github.com/bull/codequery/internal/repo"
	"github.com/bull/codequery/internal/retrieve"
)

// ErrNotLoaded is returned when a question arrives before any repository has
// been successfully loaded.
var ErrNotLoaded = errors.New("no repository loaded")

// Embedder vectorizes chunk batches at load time and questions at query time.
// Both must run against the same model; the engine uses one embedder for the
// life of the process.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Synthesizer turns a question plus retrieval results into an answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, results []retrieve.ScoredChunk) (*answer.Answer, error)
}

// IndexBuilder constructs a vector index from all entries at once.
type IndexBuilder func(ctx context.Context, entries []index.Entry) (index.Index, error)

// MemoryBuilder builds the default in-memory index.
func MemoryBuilder(_ context.Context, entries []index.Entry) (index.Index, error) {
	return index.BuildMemory(entries)
}

// LoadResult reports what a successful load produced, including the files
// that were skipped and why.
type LoadResult struct {
	Location string
	Files    int
	Chunks   int
	Skipped  []repo.Skip
	Duration time.Duration
}

// StatusInfo describes the currently loaded session, if any.
type StatusInfo struct {
	Loaded   bool
	Location string
	Files    int
	Chunks   int
	LoadedAt time.Time
}

// session owns one built index and the chunk table it was built from. The
// index reference is kept so it can be released once the session is swapped
// out.
type session struct {
	location  string
	retriever *retrieve.Retriever
	idx       index.Index
	files     int
	chunks    int
	loadedAt  time.Time
}

// Engine is the pipeline orchestrator exposed to the CLI and server.
type Engine struct {
	cfg        config.Config
	embedder   Embedder
	synth      Synthesizer
	buildIndex IndexBuilder
	logger     *slog.Logger

	current atomic.Pointer[session]
}

// New creates an engine. buildIndex nil selects the in-memory index; logger
// nil selects slog.Default().
func New(cfg config.Config, embedder Embedder, synth Synthesizer, buildIndex IndexBuilder, logger *slog.Logger) *Engine {
	if buildIndex == nil {
		buildIndex = MemoryBuilder
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:        cfg,
		embedder:   embedder,
		synth:      synth,
		buildIndex: buildIndex,
		logger:     logger,
	}
}

// Load indexes the repository at location and swaps it in as the live
// session. On any error the previous session remains untouched and
// answerable.
func (e *Engine) Load(ctx context.Context, location string) (*LoadResult, error) {
	start := time.Now()

	source, err := repo.Resolve(location, repo.Filter{MaxFileSize: e.cfg.MaxFileSize})
	if err != nil {
		return nil, err
	}

	files, skips, err := source.Files(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", location, err)
	}
	e.logger.Info("repository read", "location", location, "files", len(files), "skipped", len(skips))

	chunker := chunk.NewChunker(e.cfg.MaxChunkLines, e.cfg.OverlapLines)
	var chunks []chunk.Chunk
	for _, f := range files {
		chunks = append(chunks, chunker.ChunkFile(f)...)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("load %s: %w", location, index.ErrEmptyIndex)
	}
	e.logger.Info("repository chunked", "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := e.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	entries := make([]index.Entry, len(chunks))
	for i, c := range chunks {
		entries[i] = index.Entry{ID: c.ID, Vector: vectors[i]}
	}
	idx, err := e.buildIndex(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	sess := &session{
		location:  location,
		retriever: retrieve.New(e.embedder, idx, chunks),
		idx:       idx,
		files:     len(files),
		chunks:    len(chunks),
		loadedAt:  time.Now(),
	}

	// The swap is the commit point: everything before it only built the new
	// session, so a failure above leaves the previous session answering.
	// Server-side state of the replaced index is released after the swap,
	// when no reader can reach it through the pointer anymore.
	if old := e.current.Swap(sess); old != nil {
		if err := index.Release(ctx, old.idx); err != nil {
			e.logger.Warn("release previous index", "error", err)
		}
	}

	result := &LoadResult{
		Location: location,
		Files:    len(files),
		Chunks:   len(chunks),
		Skipped:  skips,
		Duration: time.Since(start),
	}
	e.logger.Info("repository indexed",
		"location", location,
		"files", result.Files,
		"chunks", result.Chunks,
		"skipped", len(result.Skipped),
		"duration", result.Duration,
	)
	return result, nil
}

// Ask retrieves the top-k chunks for the question and synthesizes an answer.
// k <= 0 uses the configured default.
func (e *Engine) Ask(ctx context.Context, question string, k int) (*answer.Answer, error) {
	sess := e.current.Load()
	if sess == nil {
		return nil, ErrNotLoaded
	}
	if k <= 0 {
		k = e.cfg.TopK
	}

	results, err := sess.retriever.Retrieve(ctx, question, k)
	if err != nil {
		return nil, err
	}
	// The flat memory index always returns at least one hit once built, but
	// a server-backed index may return none. Answer honestly instead of
	// sending the model an empty context.
	if len(results) == 0 {
		return &answer.Answer{Text: "I couldn't find relevant information in the codebase."}, nil
	}

	return e.synth.Synthesize(ctx, question, results)
}

// Search retrieves chunks without calling the language model.
func (e *Engine) Search(ctx context.Context, query string, k int) ([]retrieve.ScoredChunk, error) {
	sess := e.current.Load()
	if sess == nil {
		return nil, ErrNotLoaded
	}
	if k <= 0 {
		k = e.cfg.TopK
	}
	return sess.retriever.Retrieve(ctx, query, k)
}

// Status reports the live session, if any.
func (e *Engine) Status() StatusInfo {
	sess := e.current.Load()
	if sess == nil {
		return StatusInfo{}
	}
	return StatusInfo{
		Loaded:   true,
		Location: sess.location,
		Files:    sess.files,
		Chunks:   sess.chunks,
		LoadedAt: sess.loadedAt,
	}
}

// Ready reports whether a session is loaded and answerable.
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}
