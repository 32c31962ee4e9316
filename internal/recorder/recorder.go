// Package recorder captures every model interaction a pipeline run makes:
// which model was called, with which prompts, what it answered, and how long
// it took. Recording is observability only and never fails a stage.
package recorder

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"albert/internal/tokens"
)

// Interaction is one recorded upstream call.
type Interaction struct {
	ID           string        `json:"id"`
	RunID        string        `json:"runId"`
	Stage        string        `json:"stage"`
	Model        string        `json:"model"`
	SystemPrompt string        `json:"systemPrompt,omitempty"`
	UserPrompt   string        `json:"userPrompt"`
	Output       string        `json:"output,omitempty"`
	Error        string        `json:"error,omitempty"`
	PromptTokens int           `json:"promptTokens"`
	OutputTokens int           `json:"outputTokens"`
	Duration     time.Duration `json:"duration"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Store persists interactions.
type Store interface {
	SaveInteraction(ctx context.Context, interaction *Interaction) error
	ListInteractions(ctx context.Context, runID string) ([]*Interaction, error)
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// Recorder writes interactions to a store, attaching IDs, timestamps, and
// token counts.
type Recorder struct {
	store   Store
	counter *tokens.Counter
	logger  *slog.Logger
}

// New creates a recorder backed by store.
func New(store Store, opts ...Option) *Recorder {
	r := &Recorder{
		store:   store,
		counter: tokens.NewCounter(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record persists one interaction. Failures are logged and swallowed.
func (r *Recorder) Record(ctx context.Context, interaction Interaction) {
	if r == nil {
		return
	}

	if interaction.ID == "" {
		interaction.ID = uuid.New().String()
	}
	if interaction.CreatedAt.IsZero() {
		interaction.CreatedAt = time.Now()
	}
	interaction.PromptTokens = r.counter.Count(interaction.SystemPrompt) + r.counter.Count(interaction.UserPrompt)
	interaction.OutputTokens = r.counter.Count(interaction.Output)

	if err := r.store.SaveInteraction(ctx, &interaction); err != nil {
		r.logger.Warn("failed to record model interaction",
			slog.String("run_id", interaction.RunID),
			slog.String("stage", interaction.Stage),
			slog.String("error", err.Error()))
	}
}

// List returns all interactions recorded for a run, oldest first.
func (r *Recorder) List(ctx context.Context, runID string) ([]*Interaction, error) {
	return r.store.ListInteractions(ctx, runID)
}
