package contract

import (
	"log/slog"
	"strings"

	"albert/internal/domain"
)

type questionEnvelope struct {
	Questions []string `json:"questions"`
}

// ParseQuestions extracts the discussion questions from raw generator output.
// Tense mismatches against the event timing are logged, never corrected; the
// reference behavior warns only.
func ParseQuestions(raw string, timing domain.EventTiming, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var envelope questionEnvelope
	if err := parseObject(raw, &envelope); err != nil {
		return nil, err
	}

	if len(envelope.Questions) != domain.QuestionCount {
		return nil, shapeErrorf("expected %d questions, got %d",
			domain.QuestionCount, len(envelope.Questions))
	}

	for i, q := range envelope.Questions {
		if q == "" {
			return nil, shapeErrorf("question %d is empty", i)
		}
		if tenseMismatch(q, timing) {
			logger.Warn("question tense does not match event timing",
				slog.Int("index", i),
				slog.String("timing", string(timing)),
				slog.String("question", q))
		}
	}

	return envelope.Questions, nil
}

// tenseMismatch is a best-effort word-level heuristic. It only looks for
// auxiliaries that contradict the expected timing.
func tenseMismatch(question string, timing domain.EventTiming) bool {
	words := strings.Fields(strings.ToLower(strings.TrimRight(question, "?")))
	has := func(candidates ...string) bool {
		for _, w := range words {
			for _, c := range candidates {
				if w == c {
					return true
				}
			}
		}
		return false
	}

	switch timing {
	case domain.TimingPast:
		return has("will", "shall")
	case domain.TimingFuture:
		return has("did", "was", "were", "happened")
	default:
		return false
	}
}
