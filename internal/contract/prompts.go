package contract

import (
	"strings"

	"albert/internal/domain"
)

// PromptPrefix and PromptSuffix are the camera and style boilerplate every
// illustration prompt must carry. The suffix uses an en dash before "ar".
const (
	PromptPrefix = "a magazine high fidelity photography of"
	PromptSuffix = "shot with Sony A7R IV with 16-35mm f/2.8 GM, orange color grade LUT –ar 16:9"
)

type imagePromptEnvelope struct {
	ImagePrompts []string `json:"imagePrompts"`
}

// ParseImagePrompts extracts the illustration prompts from raw generator
// output and normalizes each one's prefix and suffix.
func ParseImagePrompts(raw string) ([]string, error) {
	var envelope imagePromptEnvelope
	if err := parseObject(raw, &envelope); err != nil {
		return nil, err
	}

	if len(envelope.ImagePrompts) != domain.ImagePromptCount {
		return nil, shapeErrorf("expected %d image prompts, got %d",
			domain.ImagePromptCount, len(envelope.ImagePrompts))
	}

	prompts := make([]string, len(envelope.ImagePrompts))
	for i, p := range envelope.ImagePrompts {
		prompts[i] = NormalizePrompt(p)
	}
	return prompts, nil
}

// NormalizePrompt guarantees the canonical prefix and suffix on one prompt.
// Detection is case-insensitive; the canonical casing is emitted. User content
// is never truncated.
func NormalizePrompt(prompt string) string {
	p := strings.TrimSpace(prompt)

	if !strings.HasPrefix(strings.ToLower(p), strings.ToLower(PromptPrefix)) {
		p = PromptPrefix + " " + p
	}
	if !strings.HasSuffix(strings.ToLower(p), strings.ToLower(PromptSuffix)) {
		p = p + " " + PromptSuffix
	}
	return p
}
