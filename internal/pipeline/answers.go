package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"albert/internal/domain"
	"albert/internal/recorder"
)

// AnswerGenerator answers a set of questions with one fact-lookup call per
// question. It sits outside the stage graph but shares its fan-out contract:
// concurrent dispatch, results reassembled in question order, all-or-nothing.
type AnswerGenerator struct {
	research Researcher
	rec      *recorder.Recorder
}

// NewAnswerGenerator creates an answer generator.
func NewAnswerGenerator(research Researcher, rec *recorder.Recorder) *AnswerGenerator {
	return &AnswerGenerator{research: research, rec: rec}
}

// Answers researches each question concurrently and returns the answers in
// the same order as the questions. Interactions are recorded under runID so
// the set stays retrievable from the interaction log.
func (g *AnswerGenerator) Answers(ctx context.Context, runID, topic string, questions []string) ([]domain.Answer, error) {
	var wg sync.WaitGroup
	answers := make([]domain.Answer, len(questions))
	errs := make([]error, len(questions))

	for i, question := range questions {
		wg.Add(1)
		go func(idx int, q string) {
			defer wg.Done()
			prompt := answerPrompt(topic, q)
			start := time.Now()
			answer, err := g.research.Complete(ctx, answerSystemPrompt, prompt)
			record(ctx, g.rec, runID, "Answers", g.research.Model(), answerSystemPrompt, prompt, answer, start, err)
			answers[idx] = domain.Answer{Question: q, Answer: answer}
			errs[idx] = err
		}(i, question)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, domain.WrapError(domain.ErrFanOutPartialFailure,
				fmt.Sprintf("answer for question %d failed", i), err)
		}
	}

	return answers, nil
}
