// Package contract validates and repairs the structured output of generative
// services. Each schema has a parse function that extracts the first JSON
// object from free text, decodes it, and applies that schema's repair rules.
package contract

import (
	"encoding/json"
	"fmt"

	"albert/internal/domain"
)

// ExtractJSON returns the first balanced brace-delimited JSON object embedded
// in text. String literals and escapes are respected so braces inside strings
// do not affect balancing.
func ExtractJSON(text string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if start >= 0 && inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		case '"':
			if start >= 0 {
				inString = true
			}
		}
	}

	return "", domain.NewError(domain.ErrNoStructuredOutput, "no JSON object found in response")
}

// parseObject extracts and decodes a JSON object from free text into v.
func parseObject(text string, v any) error {
	slice, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(slice), v); err != nil {
		return domain.WrapError(domain.ErrMalformedOutput, "invalid JSON in response", err)
	}
	return nil
}

// shapeErrorf builds an UnexpectedResponseShape error.
func shapeErrorf(format string, args ...any) error {
	return domain.NewError(domain.ErrUnexpectedResponseShape, fmt.Sprintf(format, args...))
}
