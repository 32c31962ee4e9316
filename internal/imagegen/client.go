// Package imagegen provides the HTTP client for the image-synthesis service,
// a Replicate-style predictions API.
package imagegen

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
	defaultBaseURL = "https://api.replicate.com"
	defaultModel   = "black-forest-labs/flux-dev"
	defaultTimeout = 120 * time.Second

	// Fixed render parameters for every prompt.
	renderWidth  = 1024
	renderHeight = 576
	renderSteps  = 50
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

// Client is an HTTP client for the image-synthesis service.
type Client struct {
	token      string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient creates a new image-synthesis client.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the model this client renders with.
func (c *Client) Model() string {
	return c.model
}

type predictionRequest struct {
	Input predictionInput `json:"input"`
}

type predictionInput struct {
	Prompt            string `json:"prompt"`
	Width             int    `json:"width"`
	Height            int    `json:"height"`
	NumInferenceSteps int    `json:"num_inference_steps"`
}

type predictionResponse struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Output []string `json:"output"`
	Error  string   `json:"error,omitempty"`
}

// Render synthesizes one image for the prompt and returns its location. The
// request is synchronous; the service holds the connection until the render
// finishes. A response with zero outputs fails the call.
func (c *Client) Render(ctx context.Context, prompt string) (string, error) {
	reqBody := predictionRequest{
		Input: predictionInput{
			Prompt:            prompt,
			Width:             renderWidth,
			Height:            renderHeight,
			NumInferenceSteps: renderSteps,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/models/%s/predictions", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Prefer", "wait")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", domain.WrapError(domain.ErrTransportFailure, "render request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.WrapError(domain.ErrTransportFailure, "failed to read render response", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", domain.NewError(domain.ErrTransportFailure,
			fmt.Sprintf("render API error (status %d)", resp.StatusCode))
	}

	var result predictionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", domain.WrapError(domain.ErrUnexpectedResponseShape, "failed to unmarshal render response", err)
	}

	if result.Error != "" {
		return "", domain.NewError(domain.ErrTransportFailure, "render failed: "+result.Error)
	}
	if len(result.Output) == 0 {
		return "", domain.NewError(domain.ErrUnexpectedResponseShape, "render response has no output images")
	}

	return result.Output[0], nil
}
