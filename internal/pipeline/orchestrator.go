package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"albert/internal/domain"
	"albert/internal/recorder"
)

// Orchestrator drives one topic request through the stage graph:
//
//	Analysis → (Questions ∥ ImagePrompts) → ImageRender → Outline
//
// Each stage completion is pushed to the observer as an immutable snapshot
// before the next stage starts. The first stage failure halts the graph; no
// downstream stage is started and the final snapshot carries the Failed
// status with the failing stage attached.
type Orchestrator struct {
	analysis     Stage
	questions    Stage
	imagePrompts Stage
	imageRender  Stage
	outline      Stage

	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithClock overrides the reference-date clock.
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// NewOrchestrator wires the five stages from the upstream service boundaries.
// rec may be nil to disable interaction recording.
func NewOrchestrator(research Researcher, textgen Generator, renderer Renderer, rec *recorder.Recorder, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		logger: slog.Default(),
		tracer: otel.Tracer("albert/pipeline"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	o.analysis = NewAnalysisStage(research, textgen, rec, o.logger)
	o.questions = NewQuestionStage(textgen, rec, o.logger)
	o.imagePrompts = NewImagePromptStage(textgen, rec)
	o.imageRender = NewImageRenderStage(renderer, rec)
	o.outline = NewOutlineStage(research, textgen, rec)

	return o
}

// snapshotBuffer holds every emission of a run (five stage snapshots plus the
// terminal one) so the run never blocks on a slow or departed observer.
const snapshotBuffer = 8

// Start begins a run and returns a channel of result snapshots. A snapshot is
// emitted after every completed stage, in the canonical reveal order, and a
// final one at the terminal status. The channel is closed when the run ends.
// Each call is an independent run; repeated calls with the same request are
// not idempotent since the upstream services are non-deterministic.
func (o *Orchestrator) Start(ctx context.Context, req domain.TopicRequest) (<-chan *domain.PipelineResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result := &domain.PipelineResult{
		RunID:         uuid.New().String(),
		Request:       req,
		ReferenceDate: o.now(),
		Status:        domain.StatusRunning,
	}

	out := make(chan *domain.PipelineResult, snapshotBuffer)
	go o.run(ctx, result, out)
	return out, nil
}

func (o *Orchestrator) run(ctx context.Context, result *domain.PipelineResult, out chan<- *domain.PipelineResult) {
	defer close(out)

	ctx, span := o.tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(
			attribute.String("run.id", result.RunID),
			attribute.String("run.topic", result.Request.Topic),
		))
	defer span.End()

	o.logger.Info("pipeline run started",
		slog.String("run_id", result.RunID),
		slog.String("topic", result.Request.Topic),
		slog.String("audience", string(result.Request.Audience)))

	emit := func() {
		out <- result.Clone()
	}
	fail := func(err error) {
		result.Status = domain.StatusFailed
		result.FailedStage = domain.FailedStage(err)
		var se *domain.StageError
		if errors.As(err, &se) {
			result.Error = se.Err.Error()
		} else {
			result.Error = err.Error()
		}
		span.SetStatus(codes.Error, result.Error)
		o.logger.Error("pipeline run failed",
			slog.String("run_id", result.RunID),
			slog.String("stage", result.FailedStage),
			slog.String("error", result.Error))
		emit()
	}

	// Analysis gates everything else.
	if err := o.runStage(ctx, o.analysis, result); err != nil {
		fail(err)
		return
	}
	emit()

	// Questions and image prompts only depend on analysis and run
	// concurrently. Their outputs are merged and revealed in canonical order
	// once both finish; a failure discards the sibling that follows it in
	// that order.
	var questionsMerge, promptsMerge Merge
	var questionsErr, promptsErr error

	var g errgroup.Group
	g.Go(func() error {
		questionsMerge, questionsErr = o.runStageDeferred(ctx, o.questions, result)
		return nil
	})
	g.Go(func() error {
		promptsMerge, promptsErr = o.runStageDeferred(ctx, o.imagePrompts, result)
		return nil
	})
	g.Wait()

	if questionsErr != nil {
		fail(questionsErr)
		return
	}
	questionsMerge(result)
	emit()

	if promptsErr != nil {
		fail(promptsErr)
		return
	}
	promptsMerge(result)
	emit()

	if err := o.runStage(ctx, o.imageRender, result); err != nil {
		fail(err)
		return
	}
	emit()

	if err := o.runStage(ctx, o.outline, result); err != nil {
		fail(err)
		return
	}

	result.Status = domain.StatusCompleted
	emit()
	o.logger.Info("pipeline run completed", slog.String("run_id", result.RunID))
}

// runStage executes a stage and applies its merge on success.
func (o *Orchestrator) runStage(ctx context.Context, stage Stage, result *domain.PipelineResult) error {
	merge, err := o.runStageDeferred(ctx, stage, result)
	if err != nil {
		return err
	}
	merge(result)
	return nil
}

// runStageDeferred executes a stage but leaves the merge to the caller, so
// concurrent sibling stages can be applied in canonical reveal order.
func (o *Orchestrator) runStageDeferred(ctx context.Context, stage Stage, result *domain.PipelineResult) (Merge, error) {
	ctx, span := o.tracer.Start(ctx, "pipeline.stage."+stage.Name(),
		trace.WithAttributes(attribute.String("run.id", result.RunID)))
	defer span.End()

	start := time.Now()
	merge, err := stage.Run(ctx, result)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.StageError{Stage: stage.Name(), Err: err}
	}

	o.logger.Info("stage completed",
		slog.String("run_id", result.RunID),
		slog.String("stage", stage.Name()),
		slog.Duration("duration", time.Since(start)))
	return merge, nil
}
