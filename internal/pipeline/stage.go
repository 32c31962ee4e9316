// Package pipeline implements the generation stages, their fixed dependency
// order, and the orchestrator that drives one topic request through them.
package pipeline

import (
	"context"
	"time"

	"albert/internal/domain"
	"albert/internal/recorder"
)

// Stage names, used in failure status, spans, and recorded interactions.
const (
	StageAnalysis     = "Analysis"
	StageQuestions    = "Questions"
	StageImagePrompts = "ImagePrompts"
	StageImageRender  = "ImageRender"
	StageOutline      = "Outline"
)

// Researcher is the fact-lookup service boundary.
type Researcher interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Model() string
}

// Generator is the text-generation service boundary.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Renderer is the image-synthesis service boundary.
type Renderer interface {
	Render(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Merge applies one stage's validated output to the result accumulator. It is
// returned by a successful Run and invoked only by the orchestrator, which
// owns the accumulator.
type Merge func(*domain.PipelineResult)

// Stage is one unit of the pipeline. Run reads its typed inputs from the
// current accumulator state, calls its upstream service, validates the output,
// and either fully succeeds or fully fails; it never mutates the accumulator
// itself.
type Stage interface {
	Name() string
	Run(ctx context.Context, current *domain.PipelineResult) (Merge, error)
}

// record captures an upstream call for the interaction log.
func record(ctx context.Context, rec *recorder.Recorder, runID, stage, model, systemPrompt, userPrompt, output string, start time.Time, err error) {
	if rec == nil {
		return
	}
	interaction := recorder.Interaction{
		RunID:        runID,
		Stage:        stage,
		Model:        model,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Output:       output,
		Duration:     time.Since(start),
	}
	if err != nil {
		interaction.Error = err.Error()
	}
	rec.Record(ctx, interaction)
}
