package contract

import (
	"log/slog"
	"strings"
	"time"

	"albert/internal/domain"
)

const summaryEllipsis = "..."

// ParseAnalysis extracts an AnalysisResult from raw generator output and
// repairs it against the run's reference date.
func ParseAnalysis(raw string, reference time.Time, logger *slog.Logger) (*domain.AnalysisResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var result domain.AnalysisResult
	if err := parseObject(raw, &result); err != nil {
		return nil, err
	}

	result.Category = normalizeCategory(result.Category, logger)
	RepairAnalysis(&result, reference)

	return &result, nil
}

// RepairAnalysis applies the analysis repair rules in place. Applying it to an
// already-repaired result is a no-op.
func RepairAnalysis(a *domain.AnalysisResult, reference time.Time) {
	if !a.IsEvent {
		// Timing and date are only meaningful for events.
		a.EventTiming = ""
		a.EventDate = ""
	} else if date, ok := a.ParsedEventDate(); ok {
		// The generator's own date comparison is never trusted: when a date is
		// present the timing is recomputed from it.
		a.EventTiming = domain.TimingFor(date, reference)
	} else {
		a.EventDate = ""
		if !validTiming(a.EventTiming) {
			a.EventTiming = ""
		}
	}

	a.Summary = truncateSummary(a.Summary)
}

func validTiming(t domain.EventTiming) bool {
	switch t {
	case domain.TimingPast, domain.TimingOngoing, domain.TimingFuture:
		return true
	}
	return false
}

// truncateSummary bounds the summary to MaxSummaryLength characters, keeping
// the first characters verbatim and marking the cut with an ellipsis.
func truncateSummary(s string) string {
	runes := []rune(s)
	if len(runes) <= domain.MaxSummaryLength {
		return s
	}
	keep := domain.MaxSummaryLength - len(summaryEllipsis)
	return string(runes[:keep]) + summaryEllipsis
}

// normalizeCategory maps the generator's category onto the fixed list,
// tolerating case differences. Anything unrecognized falls back to Other.
func normalizeCategory(c domain.Category, logger *slog.Logger) domain.Category {
	for _, known := range domain.Categories() {
		if strings.EqualFold(string(c), string(known)) {
			return known
		}
	}
	logger.Warn("unrecognized topic category", slog.String("category", string(c)))
	return domain.CategoryOther
}
