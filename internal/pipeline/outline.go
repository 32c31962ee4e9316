package pipeline

import (
	"context"
	"time"

	"albert/internal/contract"
	"albert/internal/domain"
	"albert/internal/recorder"
)

// OutlineStage builds the podcast outline. It only needs the original topic
// and audience plus fresh background from the fact-lookup service; it has no
// data dependency on the other stages and runs last for presentation reasons.
type OutlineStage struct {
	research Researcher
	textgen  Generator
	rec      *recorder.Recorder
}

// NewOutlineStage creates the outline stage.
func NewOutlineStage(research Researcher, textgen Generator, rec *recorder.Recorder) *OutlineStage {
	return &OutlineStage{research: research, textgen: textgen, rec: rec}
}

// Name implements Stage.
func (s *OutlineStage) Name() string { return StageOutline }

// Run implements Stage.
func (s *OutlineStage) Run(ctx context.Context, current *domain.PipelineResult) (Merge, error) {
	researchPrompt := outlineResearchPrompt(current.Request.Topic)
	start := time.Now()
	developments, err := s.research.Complete(ctx, outlineSystemPrompt, researchPrompt)
	record(ctx, s.rec, current.RunID, StageOutline, s.research.Model(), outlineSystemPrompt, researchPrompt, developments, start, err)
	if err != nil {
		return nil, err
	}

	referenceDate := current.ReferenceDate.Format(domain.DateLayout)
	prompt := outlinePrompt(current.Request, developments, referenceDate)
	start = time.Now()
	raw, err := s.textgen.Generate(ctx, prompt)
	record(ctx, s.rec, current.RunID, StageOutline, s.textgen.Model(), "", prompt, raw, start, err)
	if err != nil {
		return nil, err
	}

	outline, err := contract.ParseOutline(raw)
	if err != nil {
		return nil, err
	}

	return func(r *domain.PipelineResult) {
		r.Outline = outline
	}, nil
}
