package answer

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
)

// CauseCode classifies why a completion call failed, so callers can tell an
// expired credential from a transient rate limit.
type CauseCode string

const (
	CauseAuth      CauseCode = "auth"
	CauseRateLimit CauseCode = "rate_limit"
	CauseTimeout   CauseCode = "timeout"
	CauseAPI       CauseCode = "api"
	CauseNetwork   CauseCode = "network"
)

// GenerationError wraps a completion service failure. The pipeline never
// substitutes a partial or fabricated answer: a failed generation is
// surfaced with its underlying cause.
type GenerationError struct {
	Cause CauseCode
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("answer generation failed (%s): %v", e.Cause, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// classify maps an underlying error to a GenerationError cause code.
func classify(err error) *GenerationError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &GenerationError{Cause: CauseTimeout, Err: err}
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 401, 403:
			return &GenerationError{Cause: CauseAuth, Err: err}
		case 429:
			return &GenerationError{Cause: CauseRateLimit, Err: err}
		default:
			return &GenerationError{Cause: CauseAPI, Err: err}
		}
	}

	return &GenerationError{Cause: CauseNetwork, Err: err}
}
