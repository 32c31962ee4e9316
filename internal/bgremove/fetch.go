package bgremove

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultMaxImageSize = 20 * 1024 * 1024

// fetchImage downloads the image at url and returns its bytes and media type.
// Data URLs are decoded locally without a network round-trip.
func (r *Remover) fetchImage(ctx context.Context, url string) ([]byte, string, error) {
	if strings.HasPrefix(url, "data:") {
		return decodeDataURL(url)
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, "", fmt.Errorf("unsupported URL scheme: must be http:// or https://")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to fetch image: status %d", resp.StatusCode)
	}
	if resp.ContentLength > r.maxImageSize {
		return nil, "", fmt.Errorf("image too large: %d bytes (max %d)", resp.ContentLength, r.maxImageSize)
	}

	mediaType := resp.Header.Get("Content-Type")
	if mediaType == "" {
		mediaType = inferMediaType(url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, r.maxImageSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > r.maxImageSize {
		return nil, "", fmt.Errorf("image too large: exceeds %d bytes", r.maxImageSize)
	}

	return data, mediaType, nil
}

func decodeDataURL(url string) ([]byte, string, error) {
	content := strings.TrimPrefix(url, "data:")

	commaIdx := strings.Index(content, ",")
	if commaIdx == -1 {
		return nil, "", fmt.Errorf("invalid data URL: missing comma separator")
	}

	metadata := content[:commaIdx]
	payload := content[commaIdx+1:]

	parts := strings.Split(metadata, ";")
	mediaType := parts[0]
	if mediaType == "" {
		return nil, "", fmt.Errorf("invalid data URL: missing media type")
	}

	isBase64 := false
	for _, part := range parts[1:] {
		if part == "base64" {
			isBase64 = true
			break
		}
	}
	if !isBase64 {
		return nil, "", fmt.Errorf("data URL must be base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("invalid data URL payload: %w", err)
	}

	return data, mediaType, nil
}

func inferMediaType(url string) string {
	urlLower := strings.ToLower(url)
	switch {
	case strings.HasSuffix(urlLower, ".png"):
		return "image/png"
	case strings.HasSuffix(urlLower, ".webp"):
		return "image/webp"
	case strings.HasSuffix(urlLower, ".gif"):
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
