// Package main provides the codequery CLI: ask questions about a repository
// from the command line.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bull/codequery/internal/answer"
	"github.com/bull/codequery/internal/config"
	"github.com/bull/codequery/internal/embedding"
	"github.com/bull/codequery/internal/engine"
	"github.com/bull/codequery/internal/index"
	"github.com/bull/codequery/internal/retrieve"
)

var (
	flagTopK       int
	flagChunkLines int
	flagOverlap    int
	flagBudget     int
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "codequery",
	Short: "Ask questions about a code repository",
	Long: `CodeQuery indexes a repository (GitHub URL or local directory) into an
in-memory vector index and answers natural-language questions about it using
retrieval-augmented generation.

Environment variables:
  OPENAI_API_KEY   OpenAI API key (required)
  GITHUB_TOKEN     GitHub token for higher rate limits (optional)
  CODEQUERY_*      See internal/config for all tunables`,
}

var askCmd = &cobra.Command{
	Use:   "ask <repository> <question...>",
	Short: "Load a repository and answer a single question",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAsk,
}

var chatCmd = &cobra.Command{
	Use:   "chat <repository>",
	Short: "Load a repository and answer questions interactively",
	Args:  cobra.ExactArgs(1),
	RunE:  runChat,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagTopK, "top-k", 0, "number of chunks to retrieve per question")
	rootCmd.PersistentFlags().IntVar(&flagChunkLines, "chunk-lines", 0, "maximum lines per chunk")
	rootCmd.PersistentFlags().IntVar(&flagOverlap, "overlap", 0, "lines of overlap between adjacent chunks")
	rootCmd.PersistentFlags().IntVar(&flagBudget, "budget", 0, "prompt context budget in characters")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "print skipped files after loading")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
}

func main() {
	// Load .env file if present (local development), ignore if missing
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	eng, err := buildEngine()
	if err != nil {
		return err
	}

	if err := load(ctx, eng, args[0]); err != nil {
		return err
	}

	question := strings.Join(args[1:], " ")
	return askOnce(ctx, eng, question)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	eng, err := buildEngine()
	if err != nil {
		return err
	}

	if err := load(ctx, eng, args[0]); err != nil {
		return err
	}

	fmt.Println("Ask questions about the codebase (empty line to quit).")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			break
		}
		if err := askOnce(ctx, eng, question); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

// buildEngine wires the pipeline from environment configuration and flags.
func buildEngine() (*engine.Engine, error) {
	cfg := config.FromEnv()
	if flagTopK > 0 {
		cfg.TopK = flagTopK
	}
	if flagChunkLines > 0 {
		cfg.MaxChunkLines = flagChunkLines
	}
	if flagOverlap > 0 {
		cfg.OverlapLines = flagOverlap
	}
	if flagBudget > 0 {
		cfg.PromptBudget = flagBudget
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	client, err := embedding.NewClient()
	if err != nil {
		return nil, err
	}
	embedder := embedding.NewEmbedder(client, cfg.EmbeddingModel, 0)

	completer := answer.NewOpenAICompleter(client.Client(), cfg.ChatModel, cfg.MaxAnswerTokens, cfg.Temperature)
	synth := answer.NewSynthesizer(completer, cfg.PromptBudget)

	buildIndex := engine.MemoryBuilder
	if cfg.IndexBackend == config.BackendQdrant {
		qdrantClient, err := index.NewQdrantClient(cfg.QdrantHost, cfg.QdrantPort)
		if err != nil {
			return nil, fmt.Errorf("connect to qdrant: %w", err)
		}
		buildIndex = func(ctx context.Context, entries []index.Entry) (index.Index, error) {
			return index.BuildQdrant(ctx, qdrantClient, entries)
		}
	}

	return engine.New(cfg, embedder, synth, buildIndex, nil), nil
}

func load(ctx context.Context, eng *engine.Engine, location string) error {
	fmt.Printf("Loading %s...\n", location)
	result, err := eng.Load(ctx, location)
	if err != nil {
		return fmt.Errorf("load repository: %w", err)
	}

	fmt.Printf("Indexed %d files into %d chunks in %s",
		result.Files, result.Chunks, result.Duration.Round(time.Millisecond))
	if len(result.Skipped) > 0 {
		fmt.Printf(" (%d files skipped)", len(result.Skipped))
	}
	fmt.Println()

	if flagVerbose {
		for _, s := range result.Skipped {
			fmt.Printf("  skipped %s: %s\n", s.Path, s.Reason)
		}
	}
	return nil
}

func askOnce(ctx context.Context, eng *engine.Engine, question string) error {
	ans, err := eng.Ask(ctx, question, 0)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(ans.Text)
	if len(ans.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		printSources(ans.Sources)
	}
	fmt.Println()
	return nil
}

func printSources(sources []retrieve.ScoredChunk) {
	for i, s := range sources {
		fmt.Printf("  %d. %s (score %.2f)\n", i+1, s.Chunk.Location(), s.Score)
	}
}
