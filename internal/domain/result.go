package domain

import "time"

// RunStatus is the terminal-state machine of one pipeline run.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// PipelineResult is the result accumulator for one run. It is owned and
// mutated exclusively by the orchestrator; observers only ever see clones.
// Each stage completion sets exactly the fields that stage owns.
type PipelineResult struct {
	RunID         string          `json:"runId"`
	Request       TopicRequest    `json:"request"`
	ReferenceDate time.Time       `json:"referenceDate"`
	Analysis      *AnalysisResult `json:"analysis,omitempty"`
	Questions     []string        `json:"questions,omitempty"`
	ImagePrompts  []string        `json:"imagePrompts,omitempty"`
	Images        []string        `json:"images,omitempty"`
	Outline       *PodcastOutline `json:"outline,omitempty"`
	Status        RunStatus       `json:"status"`
	FailedStage   string          `json:"failedStage,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// Clone returns a deep copy safe to hand to observers while the orchestrator
// keeps mutating the original.
func (r *PipelineResult) Clone() *PipelineResult {
	out := *r

	if r.Analysis != nil {
		analysis := *r.Analysis
		out.Analysis = &analysis
	}
	if r.Questions != nil {
		out.Questions = append([]string(nil), r.Questions...)
	}
	if r.ImagePrompts != nil {
		out.ImagePrompts = append([]string(nil), r.ImagePrompts...)
	}
	if r.Images != nil {
		out.Images = append([]string(nil), r.Images...)
	}
	if r.Outline != nil {
		outline := PodcastOutline{
			Title:    r.Outline.Title,
			Sections: make([]OutlineSection, len(r.Outline.Sections)),
		}
		for i, s := range r.Outline.Sections {
			outline.Sections[i] = OutlineSection{
				Title:   s.Title,
				Content: append([]string(nil), s.Content...),
			}
		}
		out.Outline = &outline
	}

	return &out
}
