package pipeline

import (
	"context"
	"log/slog"
	"time"

	"albert/internal/contract"
	"albert/internal/domain"
	"albert/internal/recorder"
)

// AnalysisStage classifies the topic: whether it is an event, its timing and
// date, a category, and a short summary. It first gathers background from the
// fact-lookup service, then asks the text generator for structured output.
type AnalysisStage struct {
	research Researcher
	textgen  Generator
	rec      *recorder.Recorder
	logger   *slog.Logger
}

// NewAnalysisStage creates the analysis stage.
func NewAnalysisStage(research Researcher, textgen Generator, rec *recorder.Recorder, logger *slog.Logger) *AnalysisStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisStage{research: research, textgen: textgen, rec: rec, logger: logger}
}

// Name implements Stage.
func (s *AnalysisStage) Name() string { return StageAnalysis }

// Run implements Stage.
func (s *AnalysisStage) Run(ctx context.Context, current *domain.PipelineResult) (Merge, error) {
	researchPrompt := analysisResearchPrompt(current.Request.Topic)
	start := time.Now()
	info, err := s.research.Complete(ctx, researchSystemPrompt, researchPrompt)
	record(ctx, s.rec, current.RunID, StageAnalysis, s.research.Model(), researchSystemPrompt, researchPrompt, info, start, err)
	if err != nil {
		return nil, err
	}

	referenceDate := current.ReferenceDate.Format(domain.DateLayout)
	prompt := analysisPrompt(current.Request, info, referenceDate)
	start = time.Now()
	raw, err := s.textgen.Generate(ctx, prompt)
	record(ctx, s.rec, current.RunID, StageAnalysis, s.textgen.Model(), "", prompt, raw, start, err)
	if err != nil {
		return nil, err
	}

	analysis, err := contract.ParseAnalysis(raw, current.ReferenceDate, s.logger)
	if err != nil {
		return nil, err
	}

	return func(r *domain.PipelineResult) {
		r.Analysis = analysis
	}, nil
}
