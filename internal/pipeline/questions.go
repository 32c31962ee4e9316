package pipeline

import (
	"context"
	"log/slog"
	"time"

	"albert/internal/contract"
	"albert/internal/domain"
	"albert/internal/recorder"
)

// QuestionStage generates the six discussion questions. It depends on the
// analysis stage for the event flag and timing.
type QuestionStage struct {
	textgen Generator
	rec     *recorder.Recorder
	logger  *slog.Logger
}

// NewQuestionStage creates the question stage.
func NewQuestionStage(textgen Generator, rec *recorder.Recorder, logger *slog.Logger) *QuestionStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionStage{textgen: textgen, rec: rec, logger: logger}
}

// Name implements Stage.
func (s *QuestionStage) Name() string { return StageQuestions }

// Run implements Stage.
func (s *QuestionStage) Run(ctx context.Context, current *domain.PipelineResult) (Merge, error) {
	prompt := questionsPrompt(current.Request, current.Analysis)
	start := time.Now()
	raw, err := s.textgen.Generate(ctx, prompt)
	record(ctx, s.rec, current.RunID, StageQuestions, s.textgen.Model(), "", prompt, raw, start, err)
	if err != nil {
		return nil, err
	}

	questions, err := contract.ParseQuestions(raw, current.Analysis.EventTiming, s.logger)
	if err != nil {
		return nil, err
	}

	return func(r *domain.PipelineResult) {
		r.Questions = questions
	}, nil
}
