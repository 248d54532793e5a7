package embedding

import (
	"fmt"
	"os"

	"github.com/openai/openai-go"
)

// Client wraps the OpenAI client shared by embedding and answer synthesis.
type Client struct {
	client *openai.Client
}

// NewClient creates the OpenAI client. The API key is required at startup:
// without it neither indexing nor answering can work, so failing here is
// better than failing on the first query.
func NewClient() (*Client, error) {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	// openai-go reads OPENAI_API_KEY from the environment.
	client := openai.NewClient()

	return &Client{client: &client}, nil
}

// Client returns the underlying OpenAI client for use in other packages
// (answer synthesis shares the same credential and transport).
func (c *Client) Client() *openai.Client {
	return c.client
}
