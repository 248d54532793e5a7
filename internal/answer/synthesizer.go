// Package answer assembles bounded-size prompts from retrieved chunks and
// synthesizes answers through a chat completion service.
package answer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"

	"github.com/bull/codequery/internal/retrieve"
)

// Answer is the model's output paired with the chunks that were actually in
// the prompt (not all retrieved chunks; only the ones that survived budget
// truncation).
type Answer struct {
	Text    string
	Sources []retrieve.ScoredChunk
}

// Completer is the external completion service boundary.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Synthesizer builds prompts within a character budget and calls the
// completion service.
type Synthesizer struct {
	completer Completer
	budget    int
}

// NewSynthesizer creates a synthesizer with the given completion backend and
// context budget in characters.
func NewSynthesizer(completer Completer, budget int) *Synthesizer {
	return &Synthesizer{completer: completer, budget: budget}
}

// Synthesize answers the question from the retrieval results. Completion
// failures are returned as *GenerationError; no fallback answer is invented.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, results []retrieve.ScoredChunk) (*Answer, error) {
	contextText, included := AssembleContext(results, s.budget)

	text, err := s.completer.Complete(ctx, buildPrompt(question, contextText))
	if err != nil {
		var genErr *GenerationError
		if errors.As(err, &genErr) {
			return nil, genErr
		}
		return nil, classify(err)
	}

	return &Answer{Text: text, Sources: included}, nil
}

// OpenAICompleter implements Completer using the OpenAI chat API, retrying
// rate-limited requests with exponential backoff.
type OpenAICompleter struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewOpenAICompleter wraps an OpenAI client as a Completer.
func NewOpenAICompleter(client *openai.Client, model string, maxTokens int, temperature float64) *OpenAICompleter {
	return &OpenAICompleter{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Complete sends the prompt and returns the completion text verbatim.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	var text string

	operation := func() error {
		resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model:       openai.ChatModel(c.model),
			MaxTokens:   openai.Int(int64(c.maxTokens)),
			Temperature: openai.Float(c.temperature),
		})
		if err != nil {
			if isRateLimitError(err) {
				return err // retried with backoff
			}
			return backoff.Permanent(err)
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("completion returned no choices"))
		}
		text = resp.Choices[0].Message.Content
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return "", err
	}
	return text, nil
}

func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
