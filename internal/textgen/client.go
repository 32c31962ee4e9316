// Package textgen provides the HTTP client for the text-generation service,
// an Anthropic-style messages API.
package textgen

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
	defaultBaseURL   = "https://api.anthropic.com"
	defaultVersion   = "2023-06-01"
	defaultModel     = "claude-3-sonnet-20240229"
	defaultMaxTokens = 1000
	defaultTimeout   = 60 * time.Second
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

// WithVersion sets the API version header.
func WithVersion(version string) ClientOption {
	return func(c *Client) {
		c.version = version
	}
}

// WithModel overrides the default model.
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// Client is an HTTP client for the text-generation service.
type Client struct {
	apiKey     string
	baseURL    string
	version    string
	model      string
	httpClient *http.Client
}

// NewClient creates a new text-generation client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		version:    defaultVersion,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the model this client generates with.
func (c *Client) Model() string {
	return c.model
}

// Generate sends a single user prompt and returns the model's text output.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.CreateMessage(ctx, &MessagesRequest{
		Model:     c.model,
		MaxTokens: defaultMaxTokens,
		Messages:  []Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", domain.NewError(domain.ErrUnexpectedResponseShape, "generation response has no text content")
}

// CreateMessage sends a messages request.
func (c *Client) CreateMessage(ctx context.Context, req *MessagesRequest) (*MessagesResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTransportFailure, "generation request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTransportFailure, "failed to read generation response", err)
	}

	if resp.StatusCode != http.StatusOK {
		if apiErr := parseErrorResponse(respBody); apiErr != "" {
			return nil, domain.NewError(domain.ErrTransportFailure,
				fmt.Sprintf("generation API error (status %d): %s", resp.StatusCode, apiErr))
		}
		return nil, domain.NewError(domain.ErrTransportFailure,
			fmt.Sprintf("generation API error (status %d)", resp.StatusCode))
	}

	var result MessagesResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, domain.WrapError(domain.ErrUnexpectedResponseShape, "failed to unmarshal generation response", err)
	}

	return &result, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", c.version)
}

func parseErrorResponse(body []byte) string {
	var envelope struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Error.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s: %s", envelope.Error.Type, envelope.Error.Message)
}
