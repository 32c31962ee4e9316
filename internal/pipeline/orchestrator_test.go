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

const (
	stubAnalysisJSON  = `{"isEvent": true, "eventTiming": "Past", "eventDate": "2024-07-14", "category": "Sports", "summary": "Euro Cup 2024 final."}`
	stubQuestionsJSON = `{"questions": ["Q1?", "Q2?", "Q3?", "Q4?", "Q5?", "Q6?"]}`
	stubPromptsJSON   = `{"imagePrompts": ["stadium at night", "fans in the streets", "trophy close-up", "city skyline"]}`
	stubOutlineJSON   = `{"title": "The Final", "sections": [
		{"title": "Build-up", "content": ["a", "b"]},
		{"title": "Match", "content": ["a", "b", "c"]},
		{"title": "Aftermath", "content": ["a", "b"]}
	]}`
)

type stubResearcher struct {
	complete func(systemPrompt, userPrompt string) (string, error)
}

func (s *stubResearcher) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if s.complete != nil {
		return s.complete(systemPrompt, userPrompt)
	}
	return "background information", nil
}

func (s *stubResearcher) Model() string { return "stub-research" }

// stubGenerator dispatches on the prompt text, the same way the real
// generator sees a different prompt per stage.
type stubGenerator struct {
	generate func(prompt string) (string, error)
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if s.generate != nil {
		return s.generate(prompt)
	}
	switch {
	case strings.Contains(prompt, "Analyze the following topic"):
		return stubAnalysisJSON, nil
	case strings.Contains(prompt, "Generate 6 questions"):
		return stubQuestionsJSON, nil
	case strings.Contains(prompt, "Generate 4 detailed prompts"):
		return stubPromptsJSON, nil
	case strings.Contains(prompt, "podcast outline"):
		return stubOutlineJSON, nil
	}
	return "", errors.New("unexpected prompt: " + prompt)
}

func (s *stubGenerator) Model() string { return "stub-textgen" }

type stubRenderer struct {
	render func(prompt string) (string, error)
}

func (s *stubRenderer) Render(ctx context.Context, prompt string) (string, error) {
	if s.render != nil {
		return s.render(prompt)
	}
	return "https://images.example/" + prompt, nil
}

func (s *stubRenderer) Model() string { return "stub-renderer" }

func fixedClock(s string) func() time.Time {
	d, _ := time.Parse(domain.DateLayout, s)
	return func() time.Time { return d }
}

func validRequest() domain.TopicRequest {
	return domain.TopicRequest{
		Topic:    "Euro Cup 2024",
		Audience: domain.AudienceAdult,
		Country:  domain.CountryFrance,
	}
}

func collect(t *testing.T, snapshots <-chan *domain.PipelineResult) []*domain.PipelineResult {
	t.Helper()
	var all []*domain.PipelineResult
	timeout := time.After(5 * time.Second)
	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				return all
			}
			all = append(all, snap)
		case <-timeout:
			t.Fatalf("Timed out waiting for snapshots, got %d so far", len(all))
		}
	}
}

func TestOrchestrator_HappyPath(t *testing.T) {
	o := NewOrchestrator(&stubResearcher{}, &stubGenerator{}, &stubRenderer{}, nil,
		WithClock(fixedClock("2024-06-01")))

	snapshots, err := o.Start(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	all := collect(t, snapshots)
	if len(all) != 5 {
		t.Fatalf("Expected 5 snapshots, got %d", len(all))
	}

	// Progressive reveal: each snapshot adds exactly its stage's fields.
	if all[0].Analysis == nil || all[0].Questions != nil {
		t.Error("First snapshot should carry analysis only")
	}
	if all[1].Questions == nil || all[1].ImagePrompts != nil {
		t.Error("Second snapshot should add questions only")
	}
	if all[2].ImagePrompts == nil || all[2].Images != nil {
		t.Error("Third snapshot should add image prompts only")
	}
	if all[3].Images == nil || all[3].Outline != nil {
		t.Error("Fourth snapshot should add images only")
	}

	final := all[4]
	if final.Status != domain.StatusCompleted {
		t.Errorf("Expected completed status, got %q", final.Status)
	}
	if final.Outline == nil {
		t.Error("Final snapshot missing outline")
	}
	if len(final.Questions) != domain.QuestionCount {
		t.Errorf("Expected %d questions, got %d", domain.QuestionCount, len(final.Questions))
	}
	if len(final.Images) != domain.ImagePromptCount {
		t.Errorf("Expected %d images, got %d", domain.ImagePromptCount, len(final.Images))
	}

	// The generator claimed Past but the event date is after the reference
	// date, so the analysis must say Future.
	if final.Analysis.EventTiming != domain.TimingFuture {
		t.Errorf("Expected Future timing, got %q", final.Analysis.EventTiming)
	}

	for i, snap := range all {
		if snap.RunID != all[0].RunID {
			t.Errorf("Snapshot %d has a different run ID", i)
		}
		if i < 4 && snap.Status != domain.StatusRunning {
			t.Errorf("Snapshot %d should still be running, got %q", i, snap.Status)
		}
	}
}

func TestOrchestrator_SnapshotsAreIndependent(t *testing.T) {
	o := NewOrchestrator(&stubResearcher{}, &stubGenerator{}, &stubRenderer{}, nil,
		WithClock(fixedClock("2024-06-01")))

	snapshots, err := o.Start(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	all := collect(t, snapshots)
	all[1].Questions[0] = "mutated by observer"

	if all[4].Questions[0] != "Q1?" {
		t.Error("Snapshots share backing storage")
	}
}

func TestOrchestrator_QuestionsFailureAbortsRun(t *testing.T) {
	gen := &stubGenerator{generate: func(prompt string) (string, error) {
		if strings.Contains(prompt, "Generate 6 questions") {
			return "I cannot answer that.", nil
		}
		return (&stubGenerator{}).Generate(context.Background(), prompt)
	}}
	o := NewOrchestrator(&stubResearcher{}, gen, &stubRenderer{}, nil,
		WithClock(fixedClock("2024-06-01")))

	snapshots, err := o.Start(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	all := collect(t, snapshots)
	if len(all) != 2 {
		t.Fatalf("Expected analysis snapshot plus terminal one, got %d", len(all))
	}

	final := all[len(all)-1]
	if final.Status != domain.StatusFailed {
		t.Fatalf("Expected failed status, got %q", final.Status)
	}
	if final.FailedStage != StageQuestions {
		t.Errorf("Expected failing stage %q, got %q", StageQuestions, final.FailedStage)
	}
	if final.Analysis == nil {
		t.Error("Completed analysis should survive the failure")
	}
	if final.ImagePrompts != nil {
		t.Error("Image prompts from the concurrent sibling must be discarded")
	}
	if final.Images != nil || final.Outline != nil {
		t.Error("Downstream stages must not run after a failure")
	}
	if final.Error == "" {
		t.Error("Terminal snapshot should carry the failure message")
	}
}

func TestOrchestrator_AnalysisFailureAbortsRun(t *testing.T) {
	research := &stubResearcher{complete: func(systemPrompt, userPrompt string) (string, error) {
		return "", errors.New("connection refused")
	}}
	o := NewOrchestrator(research, &stubGenerator{}, &stubRenderer{}, nil)

	snapshots, err := o.Start(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	all := collect(t, snapshots)
	if len(all) != 1 {
		t.Fatalf("Expected only the terminal snapshot, got %d", len(all))
	}
	if all[0].Status != domain.StatusFailed || all[0].FailedStage != StageAnalysis {
		t.Errorf("Expected Analysis failure, got %q / %q", all[0].Status, all[0].FailedStage)
	}
}

func TestOrchestrator_RenderFailureAbortsRun(t *testing.T) {
	renderer := &stubRenderer{render: func(prompt string) (string, error) {
		if strings.Contains(prompt, "trophy") {
			return "", errors.New("upstream 500")
		}
		return "https://images.example/ok", nil
	}}
	o := NewOrchestrator(&stubResearcher{}, &stubGenerator{}, renderer, nil,
		WithClock(fixedClock("2024-06-01")))

	snapshots, err := o.Start(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	all := collect(t, snapshots)
	final := all[len(all)-1]
	if final.Status != domain.StatusFailed {
		t.Fatalf("Expected failed status, got %q", final.Status)
	}
	if final.FailedStage != StageImageRender {
		t.Errorf("Expected failing stage %q, got %q", StageImageRender, final.FailedStage)
	}
	if final.Images != nil {
		t.Error("Partial render results must be discarded")
	}
	if final.Outline != nil {
		t.Error("Outline must not run after a render failure")
	}
	if !strings.Contains(final.Error, "render of prompt") {
		t.Errorf("Expected fan-out failure message, got %q", final.Error)
	}
}

func TestOrchestrator_InvalidRequestRejectedUpFront(t *testing.T) {
	o := NewOrchestrator(&stubResearcher{}, &stubGenerator{}, &stubRenderer{}, nil)

	_, err := o.Start(context.Background(), domain.TopicRequest{Topic: "", Audience: domain.AudienceAdult, Country: domain.CountryUSA})
	if err == nil {
		t.Fatal("Expected validation error before the run starts")
	}
}

func TestOrchestrator_RecordsInteractions(t *testing.T) {
	store := recorder.NewMemoryStore()
	rec := recorder.New(store)
	o := NewOrchestrator(&stubResearcher{}, &stubGenerator{}, &stubRenderer{}, rec,
		WithClock(fixedClock("2024-06-01")))

	snapshots, err := o.Start(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	all := collect(t, snapshots)
	final := all[len(all)-1]
	if final.Status != domain.StatusCompleted {
		t.Fatalf("Expected completed run, got %q", final.Status)
	}

	interactions, err := store.ListInteractions(context.Background(), final.RunID)
	if err != nil {
		t.Fatalf("ListInteractions returned error: %v", err)
	}

	// Two calls for analysis, one each for questions and prompts, four
	// renders, two for the outline.
	if len(interactions) != 10 {
		t.Fatalf("Expected 10 recorded interactions, got %d", len(interactions))
	}

	byStage := make(map[string]int)
	for _, it := range interactions {
		byStage[it.Stage]++
		if it.RunID != final.RunID {
			t.Errorf("Interaction recorded under wrong run: %q", it.RunID)
		}
	}
	if byStage[StageImageRender] != domain.ImagePromptCount {
		t.Errorf("Expected %d render interactions, got %d", domain.ImagePromptCount, byStage[StageImageRender])
	}
	if byStage[StageAnalysis] != 2 {
		t.Errorf("Expected 2 analysis interactions, got %d", byStage[StageAnalysis])
	}
}
