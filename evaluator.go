package examgen

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
)

// QAEvaluator ranks (question, answer) pairs with a classifier.
// An evaluator without a classifier is unavailable and callers skip ranking.
type QAEvaluator struct {
	classifier Classifier
	metrics    *Metrics
	trace      *ModelTrace
}

func NewQAEvaluator(c Classifier) *QAEvaluator {
	return &QAEvaluator{classifier: c}
}

// WithObservers attaches metrics and a model trace. Either may be nil.
func (e *QAEvaluator) WithObservers(m *Metrics, t *ModelTrace) *QAEvaluator {
	e.metrics = m
	e.trace = t
	return e
}

func (e *QAEvaluator) Available() bool {
	return e != nil && e.classifier != nil
}

// Score returns the positive-class output for every pair
func (e *QAEvaluator) Score(ctx context.Context, questions []string, answers []Answer) ([]float64, error) {
	if !e.Available() {
		return nil, fmt.Errorf("evaluator: %w", ErrModelUnavailable)
	}
	if len(questions) != len(answers) {
		return nil, fmt.Errorf("evaluator: %d questions but %d answers", len(questions), len(answers))
	}

	scores := make([]float64, len(questions))
	for i, q := range questions {
		answer := answers[i].CorrectText()
		e.trace.LogModelRequest("QAEvaluator", q+" | "+answer)
		logits, err := e.classifier.Classify(ctx, q, answer)
		e.metrics.ModelCall("evaluator", err)
		if err != nil {
			return nil, fmt.Errorf("failed to score pair %d: %w", i, err)
		}
		if len(logits) < 2 {
			return nil, fmt.Errorf("failed to score pair %d: classifier returned %d outputs", i, len(logits))
		}
		e.trace.LogModelResponse("QAEvaluator", fmt.Sprintf("%.4f", logits[1]))
		scores[i] = logits[1]
	}
	return scores, nil
}

// Rank returns input indices ordered by descending score
func (e *QAEvaluator) Rank(ctx context.Context, questions []string, answers []Answer) ([]int, error) {
	ctx, span := startSpan(ctx, "evaluator.rank", attribute.Int("pairs", len(questions)))
	scores, err := e.Score(ctx, questions, answers)
	endSpan(span, err)
	if err != nil {
		return nil, err
	}
	return RankScores(scores), nil
}

// RankScores sorts indices by descending score; ties keep input order
func RankScores(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return order
}
