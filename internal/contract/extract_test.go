package contract

import (
	"errors"
	"testing"

	"albert/internal/domain"
)

func TestExtractJSON_PlainObject(t *testing.T) {
	got, err := ExtractJSON(`{"a": 1}`)
	if err != nil {
		t.Fatalf("ExtractJSON returned error: %v", err)
	}
	if got != `{"a": 1}` {
		t.Errorf("Expected full object, got %q", got)
	}
}

func TestExtractJSON_EmbeddedInProse(t *testing.T) {
	text := "Sure! Here is the JSON you asked for:\n\n{\"isEvent\": true, \"category\": \"Sports\"}\n\nLet me know if you need anything else."
	got, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON returned error: %v", err)
	}
	if got != `{"isEvent": true, "category": "Sports"}` {
		t.Errorf("Unexpected extraction: %q", got)
	}
}

func TestExtractJSON_NestedObjects(t *testing.T) {
	text := `prefix {"outer": {"inner": [1, 2]}} suffix {"second": true}`
	got, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON returned error: %v", err)
	}
	if got != `{"outer": {"inner": [1, 2]}}` {
		t.Errorf("Expected first balanced object, got %q", got)
	}
}

func TestExtractJSON_BracesInsideStrings(t *testing.T) {
	text := `{"note": "braces } inside { strings", "ok": true}`
	got, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON returned error: %v", err)
	}
	if got != text {
		t.Errorf("String braces broke balancing: %q", got)
	}
}

func TestExtractJSON_EscapedQuoteInString(t *testing.T) {
	text := `{"quote": "she said \"hi\" {", "n": 1}`
	got, err := ExtractJSON(text)
	if err != nil {
		t.Fatalf("ExtractJSON returned error: %v", err)
	}
	if got != text {
		t.Errorf("Escaped quote broke balancing: %q", got)
	}
}

func TestExtractJSON_NoObject(t *testing.T) {
	_, err := ExtractJSON("no structured output here, sorry")
	if err == nil {
		t.Fatal("Expected error for text without JSON")
	}
	if domain.KindOf(err) != domain.ErrNoStructuredOutput {
		t.Errorf("Expected ErrNoStructuredOutput, got %v", domain.KindOf(err))
	}
}

func TestExtractJSON_UnbalancedObject(t *testing.T) {
	_, err := ExtractJSON(`{"never": "closed"`)
	if err == nil {
		t.Fatal("Expected error for unbalanced braces")
	}
	if domain.KindOf(err) != domain.ErrNoStructuredOutput {
		t.Errorf("Expected ErrNoStructuredOutput, got %v", domain.KindOf(err))
	}
}

func TestParseObject_MalformedJSON(t *testing.T) {
	var v map[string]any
	err := parseObject(`{"broken": }`, &v)
	if err == nil {
		t.Fatal("Expected error for malformed JSON")
	}
	if domain.KindOf(err) != domain.ErrMalformedOutput {
		t.Errorf("Expected ErrMalformedOutput, got %v", domain.KindOf(err))
	}

	var pe *domain.Error
	if !errors.As(err, &pe) {
		t.Error("Expected a *domain.Error")
	}
}
