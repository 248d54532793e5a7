package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/codequery/internal/answer"
	"github.com/bull/codequery/internal/config"
	"github.com/bull/codequery/internal/index"
	"github.com/bull/codequery/internal/repo"
	"github.com/bull/codequery/internal/retrieve"
)

// hashEmbedder produces deterministic vectors from character counts, good
// enough to exercise the pipeline without a model.
type hashEmbedder struct{}

const hashDim = 16

func (hashEmbedder) embed(text string) []float32 {
	vec := make([]float32, hashDim)
	for i, r := range text {
		vec[(i+int(r))%hashDim] += 1
	}
	return vec
}

func (h hashEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = h.embed(t)
	}
	return out, nil
}

func (h hashEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	return h.embed(text), nil
}

// cannedCompleter answers every prompt with a fixed string.
type cannedCompleter struct {
	response string
}

func (c *cannedCompleter) Complete(_ context.Context, _ string) (string, error) {
	return c.response, nil
}

func newTestEngine(t *testing.T, response string) *Engine {
	t.Helper()
	cfg := config.Default()
	synth := answer.NewSynthesizer(&cannedCompleter{response: response}, cfg.PromptBudget)
	return New(cfg, hashEmbedder{}, synth, nil, nil)
}

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestAsk_BeforeLoad(t *testing.T) {
	eng := newTestEngine(t, "unused")

	_, err := eng.Ask(context.Background(), "anything loaded?", 0)
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestLoadAndAsk_SingleFunction(t *testing.T) {
	eng := newTestEngine(t, "The add function returns the sum of its two arguments.")
	dir := writeRepo(t, map[string]string{
		"main.py": "def add(a, b): return a + b\n",
	})

	result, err := eng.Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Files)
	assert.Equal(t, 1, result.Chunks)
	assert.Empty(t, result.Skipped)

	ans, err := eng.Ask(context.Background(), "what does this function do?", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, ans.Text)

	// The single chunk is the answer's only source.
	require.Len(t, ans.Sources, 1)
	assert.Equal(t, "main.py", ans.Sources[0].Chunk.Path)
	assert.Equal(t, 1, ans.Sources[0].Chunk.StartLine)
}

func TestLoad_FailureKeepsPreviousSession(t *testing.T) {
	eng := newTestEngine(t, "answer")
	dir := writeRepo(t, map[string]string{
		"util.go": "package util\n\nfunc Twice(n int) int { return 2 * n }\n",
	})

	_, err := eng.Load(context.Background(), dir)
	require.NoError(t, err)

	// A failed load must not disturb the live session.
	_, err = eng.Load(context.Background(), filepath.Join(dir, "does-not-exist"))
	require.Error(t, err)
	assert.ErrorIs(t, err, repo.ErrUnreachable)

	ans, err := eng.Ask(context.Background(), "what does Twice do?", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, ans.Text)
	assert.Equal(t, "util.go", ans.Sources[0].Chunk.Path)

	status := eng.Status()
	assert.True(t, status.Loaded)
	assert.Equal(t, dir, status.Location)
}

func TestLoad_NoIndexableFiles(t *testing.T) {
	eng := newTestEngine(t, "unused")
	dir := writeRepo(t, map[string]string{
		"image.png": "\x89PNG\x00\x00",
		"empty.go":  "",
	})

	_, err := eng.Load(context.Background(), dir)
	assert.ErrorIs(t, err, repo.ErrNoIndexableFiles)
	assert.False(t, eng.Ready())
}

func TestLoad_ReportsSkips(t *testing.T) {
	eng := newTestEngine(t, "unused")
	dir := writeRepo(t, map[string]string{
		"main.go":            "package main\n\nfunc main() {}\n",
		"data.bin":           "\x00\x01\x02",
		"node_modules/x.js":  "module.exports = {}\n",
		"vendor/dep/file.go": "package dep\n",
	})

	result, err := eng.Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Files)

	// Non-code file skipped with a reason; excluded directories pruned
	// before filtering.
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "data.bin", result.Skipped[0].Path)
}

func TestSearch_ReturnsRankedChunks(t *testing.T) {
	eng := newTestEngine(t, "unused")
	dir := writeRepo(t, map[string]string{
		"a.go": "package a\n\nfunc Alpha() {}\n",
		"b.go": "package b\n\nfunc Beta() {}\n",
	})

	_, err := eng.Load(context.Background(), dir)
	require.NoError(t, err)

	results, err := eng.Search(context.Background(), "Alpha", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

// releasableIndex records whether its server-side state was dropped, the way
// the Qdrant backend releases its collection.
type releasableIndex struct {
	index.Index
	dropped bool
}

func (r *releasableIndex) Drop(context.Context) error {
	r.dropped = true
	return nil
}

func TestLoad_ReleasesReplacedIndexAfterSwap(t *testing.T) {
	var built []*releasableIndex
	builder := func(ctx context.Context, entries []index.Entry) (index.Index, error) {
		mem, err := index.BuildMemory(entries)
		if err != nil {
			return nil, err
		}
		r := &releasableIndex{Index: mem}
		built = append(built, r)
		return r, nil
	}

	cfg := config.Default()
	synth := answer.NewSynthesizer(&cannedCompleter{response: "answer"}, cfg.PromptBudget)
	eng := New(cfg, hashEmbedder{}, synth, builder, nil)

	dir := writeRepo(t, map[string]string{
		"first.go": "package first\n\nfunc One() int { return 1 }\n",
	})
	_, err := eng.Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, built, 1)
	assert.False(t, built[0].dropped, "live index must not be released")

	dir2 := writeRepo(t, map[string]string{
		"second.go": "package second\n\nfunc Two() int { return 2 }\n",
	})
	_, err = eng.Load(context.Background(), dir2)
	require.NoError(t, err)
	require.Len(t, built, 2)

	// The replaced index is released; the new one stays live and answerable.
	assert.True(t, built[0].dropped)
	assert.False(t, built[1].dropped)

	ans, err := eng.Ask(context.Background(), "what does Two return?", 0)
	require.NoError(t, err)
	assert.Equal(t, "second.go", ans.Sources[0].Chunk.Path)
}

func TestLoad_FailedBuildKeepsPreviousIndexIntact(t *testing.T) {
	var live *releasableIndex
	calls := 0
	builder := func(ctx context.Context, entries []index.Entry) (index.Index, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("upsert failed")
		}
		mem, err := index.BuildMemory(entries)
		if err != nil {
			return nil, err
		}
		live = &releasableIndex{Index: mem}
		return live, nil
	}

	cfg := config.Default()
	synth := answer.NewSynthesizer(&cannedCompleter{response: "answer"}, cfg.PromptBudget)
	eng := New(cfg, hashEmbedder{}, synth, builder, nil)

	dir := writeRepo(t, map[string]string{
		"util.go": "package util\n\nfunc Twice(n int) int { return 2 * n }\n",
	})
	_, err := eng.Load(context.Background(), dir)
	require.NoError(t, err)

	// A build that fails partway through must not release or replace the
	// live index.
	_, err = eng.Load(context.Background(), dir)
	require.Error(t, err)
	assert.False(t, live.dropped)

	ans, err := eng.Ask(context.Background(), "what does Twice do?", 0)
	require.NoError(t, err)
	assert.Equal(t, "util.go", ans.Sources[0].Chunk.Path)
}

// hitlessIndex reports entries but never returns hits, as a server-backed
// index can.
type hitlessIndex struct{ count int }

func (h *hitlessIndex) Query(context.Context, []float32, int) ([]index.Hit, error) {
	return nil, nil
}

func (h *hitlessIndex) Len() int { return h.count }

func TestAsk_NoRetrievalResults(t *testing.T) {
	builder := func(_ context.Context, entries []index.Entry) (index.Index, error) {
		return &hitlessIndex{count: len(entries)}, nil
	}

	cfg := config.Default()
	synth := answer.NewSynthesizer(&cannedCompleter{response: "unused"}, cfg.PromptBudget)
	eng := New(cfg, hashEmbedder{}, synth, builder, nil)

	dir := writeRepo(t, map[string]string{
		"main.go": "package main\n\nfunc main() {}\n",
	})
	_, err := eng.Load(context.Background(), dir)
	require.NoError(t, err)

	ans, err := eng.Ask(context.Background(), "anything?", 0)
	require.NoError(t, err)
	assert.Contains(t, ans.Text, "couldn't find relevant information")
	assert.Empty(t, ans.Sources)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	eng := newTestEngine(t, "unused")
	dir := writeRepo(t, map[string]string{
		"main.go": "package main\n",
	})
	_, err := eng.Load(context.Background(), dir)
	require.NoError(t, err)

	_, err = eng.Ask(context.Background(), "  ", 0)
	assert.ErrorIs(t, err, retrieve.ErrEmptyQuestion)
}
