package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"albert/internal/domain"
	"albert/internal/recorder"
)

func TestImageRenderStage_PreservesPromptOrder(t *testing.T) {
	prompts := []string{"first", "second", "third", "fourth"}

	// The earliest prompt finishes last, so completion order is the reverse
	// of dispatch order.
	delays := map[string]time.Duration{
		"first":  40 * time.Millisecond,
		"second": 30 * time.Millisecond,
		"third":  20 * time.Millisecond,
		"fourth": 10 * time.Millisecond,
	}
	renderer := &stubRenderer{render: func(prompt string) (string, error) {
		time.Sleep(delays[prompt])
		return "img:" + prompt, nil
	}}

	stage := NewImageRenderStage(renderer, nil)
	result := &domain.PipelineResult{RunID: "run-1", ImagePrompts: prompts}

	merge, err := stage.Run(context.Background(), result)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	merge(result)

	if len(result.Images) != len(prompts) {
		t.Fatalf("Expected %d images, got %d", len(prompts), len(result.Images))
	}
	for i, prompt := range prompts {
		if want := "img:" + prompt; result.Images[i] != want {
			t.Errorf("Image %d: expected %q, got %q", i, want, result.Images[i])
		}
	}
}

func TestImageRenderStage_OneFailureFailsAll(t *testing.T) {
	renderer := &stubRenderer{render: func(prompt string) (string, error) {
		if prompt == "third" {
			return "", errors.New("upstream 500")
		}
		return "img:" + prompt, nil
	}}

	stage := NewImageRenderStage(renderer, nil)
	result := &domain.PipelineResult{RunID: "run-1", ImagePrompts: []string{"first", "second", "third", "fourth"}}

	_, err := stage.Run(context.Background(), result)
	if err == nil {
		t.Fatal("Expected error when one render fails")
	}
	if domain.KindOf(err) != domain.ErrFanOutPartialFailure {
		t.Errorf("Expected fan_out_partial_failure, got %v", domain.KindOf(err))
	}
	if result.Images != nil {
		t.Error("Failed stage must not touch the accumulator")
	}
}

func TestAnswerGenerator_PreservesQuestionOrder(t *testing.T) {
	questions := []string{"Who?", "What?", "When?", "Where?", "Why?", "How?"}

	research := &stubResearcher{complete: func(systemPrompt, userPrompt string) (string, error) {
		// Jitter completion order.
		time.Sleep(time.Duration(len(userPrompt)%7) * time.Millisecond)
		return "answer to " + userPrompt, nil
	}}

	g := NewAnswerGenerator(research, nil)
	answers, err := g.Answers(context.Background(), "answers-1", "Euro Cup 2024", questions)
	if err != nil {
		t.Fatalf("Answers returned error: %v", err)
	}
	if len(answers) != len(questions) {
		t.Fatalf("Expected %d answers, got %d", len(questions), len(answers))
	}
	for i, q := range questions {
		if answers[i].Question != q {
			t.Errorf("Answer %d paired with %q, expected %q", i, answers[i].Question, q)
		}
		if answers[i].Answer == "" {
			t.Errorf("Answer %d is empty", i)
		}
	}
}

func TestAnswerGenerator_OneFailureFailsAll(t *testing.T) {
	research := &stubResearcher{complete: func(systemPrompt, userPrompt string) (string, error) {
		if strings.Contains(userPrompt, "b?") {
			return "", errors.New("rate limited")
		}
		return "fine", nil
	}}

	g := NewAnswerGenerator(research, nil)
	_, err := g.Answers(context.Background(), "answers-1", "topic", []string{"a?", "b?", "c?"})
	if err == nil {
		t.Fatal("Expected error when one answer fails")
	}
	if domain.KindOf(err) != domain.ErrFanOutPartialFailure {
		t.Errorf("Expected fan_out_partial_failure, got %v", domain.KindOf(err))
	}
}

func TestAnswerGenerator_RecordsUnderRunID(t *testing.T) {
	store := recorder.NewMemoryStore()
	g := NewAnswerGenerator(&stubResearcher{}, recorder.New(store))

	questions := []string{"Who?", "What?", "Why?"}
	if _, err := g.Answers(context.Background(), "answers-7", "topic", questions); err != nil {
		t.Fatalf("Answers returned error: %v", err)
	}

	interactions, err := store.ListInteractions(context.Background(), "answers-7")
	if err != nil {
		t.Fatalf("ListInteractions returned error: %v", err)
	}
	if len(interactions) != len(questions) {
		t.Fatalf("Expected %d interactions under the run ID, got %d", len(questions), len(interactions))
	}
	for _, it := range interactions {
		if it.Stage != "Answers" {
			t.Errorf("Unexpected stage: %q", it.Stage)
		}
	}
}
