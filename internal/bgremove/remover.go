// Package bgremove implements the background-removal transform: fetch an
// image, submit it to a segmentation service, and return the result as a PNG
// data URL. The transform is stateless and lives outside the pipeline's stage
// graph; its failures never affect a pipeline run.
package bgremove

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://sdk.photoroom.com"
	defaultTimeout = 60 * time.Second
)

// RemoverOption configures the remover.
type RemoverOption func(*Remover)

// WithBaseURL sets a custom segmentation service base URL.
func WithBaseURL(baseURL string) RemoverOption {
	return func(r *Remover) {
		r.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) RemoverOption {
	return func(r *Remover) {
		r.httpClient = httpClient
	}
}

// WithMaxImageSize bounds how large a fetched source image may be.
func WithMaxImageSize(maxSize int64) RemoverOption {
	return func(r *Remover) {
		r.maxImageSize = maxSize
	}
}

// Remover calls the segmentation service to strip an image's background.
type Remover struct {
	apiKey       string
	baseURL      string
	maxImageSize int64
	httpClient   *http.Client
}

// NewRemover creates a new background remover.
func NewRemover(apiKey string, opts ...RemoverOption) *Remover {
	r := &Remover{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		maxImageSize: defaultMaxImageSize,
		httpClient:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RemoveBackground fetches the image at imageURL, segments it, and returns
// the background-free image as a base64 PNG data URL.
func (r *Remover) RemoveBackground(ctx context.Context, imageURL string) (string, error) {
	data, mediaType, err := r.fetchImage(ctx, imageURL)
	if err != nil {
		return "", err
	}

	var form bytes.Buffer
	writer := multipart.NewWriter(&form)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image_file"; filename="image.jpg"`)
	header.Set("Content-Type", mediaType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to build form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/segment", &form)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("x-api-key", r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("segmentation request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read segmentation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("segmentation API error (status %d): %s", resp.StatusCode, respBody)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(respBody), nil
}
