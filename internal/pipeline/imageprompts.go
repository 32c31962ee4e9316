package pipeline

import (
	"context"
	"time"

	"albert/internal/contract"
	"albert/internal/domain"
	"albert/internal/recorder"
)

// ImagePromptStage generates the four illustration prompts. It only depends
// on analysis having completed, not on its fields, so it can run alongside
// the question stage.
type ImagePromptStage struct {
	textgen Generator
	rec     *recorder.Recorder
}

// NewImagePromptStage creates the image-prompt stage.
func NewImagePromptStage(textgen Generator, rec *recorder.Recorder) *ImagePromptStage {
	return &ImagePromptStage{textgen: textgen, rec: rec}
}

// Name implements Stage.
func (s *ImagePromptStage) Name() string { return StageImagePrompts }

// Run implements Stage.
func (s *ImagePromptStage) Run(ctx context.Context, current *domain.PipelineResult) (Merge, error) {
	prompt := imagePromptsPrompt(current.Request)
	start := time.Now()
	raw, err := s.textgen.Generate(ctx, prompt)
	record(ctx, s.rec, current.RunID, StageImagePrompts, s.textgen.Model(), "", prompt, raw, start, err)
	if err != nil {
		return nil, err
	}

	prompts, err := contract.ParseImagePrompts(raw)
	if err != nil {
		return nil, err
	}

	return func(r *domain.PipelineResult) {
		r.ImagePrompts = prompts
	}, nil
}
