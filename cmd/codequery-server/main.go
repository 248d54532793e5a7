// Package main provides the CodeQuery MCP server entry point.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bull/codequery/internal/answer"
	"github.com/bull/codequery/internal/config"
	"github.com/bull/codequery/internal/embedding"
	"github.com/bull/codequery/internal/engine"
	"github.com/bull/codequery/internal/index"
	"github.com/bull/codequery/internal/mcpserver"
)

func main() {
	// Load .env file if present (local development), ignore if missing (production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	port := getEnv("PORT", "8080")

	// The OpenAI client is required before any query is attempted: it backs
	// both embedding and answer synthesis.
	client, err := embedding.NewClient()
	if err != nil {
		log.Fatalf("failed to create OpenAI client: %v", err)
	}
	embedder := embedding.NewEmbedder(client, cfg.EmbeddingModel, 0) // default batch size

	completer := answer.NewOpenAICompleter(client.Client(), cfg.ChatModel, cfg.MaxAnswerTokens, cfg.Temperature)
	synth := answer.NewSynthesizer(completer, cfg.PromptBudget)

	buildIndex := engine.MemoryBuilder
	if cfg.IndexBackend == config.BackendQdrant {
		qdrantClient, err := index.NewQdrantClient(cfg.QdrantHost, cfg.QdrantPort)
		if err != nil {
			log.Fatalf("failed to connect to Qdrant: %v", err)
		}
		defer qdrantClient.Close()
		buildIndex = func(ctx context.Context, entries []index.Entry) (index.Index, error) {
			return index.BuildQdrant(ctx, qdrantClient, entries)
		}
	}

	eng := engine.New(cfg, embedder, synth, buildIndex, nil)

	server := mcpserver.NewServer(eng)

	// HTTP endpoints: landing page, health, and MCP over streamable HTTP.
	mux := http.NewServeMux()
	mux.HandleFunc("/", mcpserver.NewLandingHandler())
	mux.HandleFunc("/health", mcpserver.NewHealthHandler(eng))
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, nil))

	// Check if running in server mode (HTTP) or stdio mode (local development)
	serverMode := getEnv("SERVER_MODE", "false") == "true"

	if serverMode {
		addr := "0.0.0.0:" + port
		log.Printf("Starting HTTP server on %s (MCP at /mcp, health at /health)", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	} else {
		// Stdio mode: run MCP over stdin/stdout with the health endpoint in
		// the background for local testing.
		go func() {
			addr := "0.0.0.0:" + port
			log.Printf("Starting health server on %s", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Printf("Health server error: %v", err)
			}
		}()

		log.Println("Starting CodeQuery MCP Server (stdio mode)...")
		if err := server.Run(ctx); err != nil {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
