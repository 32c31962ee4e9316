// Package research provides the HTTP client for the fact-lookup service, an
// OpenAI-compatible chat completions API with online search.
package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"albert/internal/domain"
)

const (
	defaultBaseURL = "https://api.perplexity.ai"
	defaultModel   = "llama-3.1-sonar-large-128k-online"
	defaultTimeout = 60 * time.Second
)

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithModel overrides the default model.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// Client is an HTTP client for the fact-lookup service.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient creates a new research client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the model this client queries.
func (c *Client) Model() string {
	return c.model
}

// Complete sends one system+user exchange and returns the assistant's text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", domain.WrapError(domain.ErrTransportFailure, "research request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.WrapError(domain.ErrTransportFailure, "failed to read research response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", domain.NewError(domain.ErrTransportFailure,
			fmt.Sprintf("research API error (status %d): %s", resp.StatusCode, truncateBody(respBody)))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", domain.WrapError(domain.ErrUnexpectedResponseShape, "failed to unmarshal research response", err)
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", domain.NewError(domain.ErrUnexpectedResponseShape, "research response has no message content")
	}

	return result.Choices[0].Message.Content, nil
}

func truncateBody(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
