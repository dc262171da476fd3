package examgen

import (
	"context"
	"errors"
	"sort"
	"testing"
)

func TestRankScoresIsStablePermutation(t *testing.T) {
	scores := []float64{0.2, 0.9, 0.5, 0.9, 0.1}
	order := RankScores(scores)

	want := []int{1, 3, 2, 0, 4}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got order %v want %v", order, want)
		}
	}

	sorted := append([]int(nil), order...)
	sort.Ints(sorted)
	for i, v := range sorted {
		if v != i {
			t.Fatalf("order %v is not a permutation", order)
		}
	}
}

func TestScoreUsesCorrectOption(t *testing.T) {
	c := &tableClassifier{scores: map[string]float64{"capital": 0.8}}
	e := NewQAEvaluator(c)

	answers := []Answer{
		{Options: []Option{{Text: "Lyon"}, {Text: "Paris", Correct: true}}},
		{Options: []Option{{Text: "Oslo"}, {Text: "Rome"}}},
		{Text: "plain"},
	}
	scores, err := e.Score(context.Background(), []string{"the capital?", "q2?", "q3?"}, answers)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if scores[0] != 0.8 || scores[1] != 0.5 {
		t.Fatalf("unexpected scores %v", scores)
	}
	if c.pairs[0] != "Paris" || c.pairs[1] != "Oslo" || c.pairs[2] != "plain" {
		t.Fatalf("scored wrong answer texts: %v", c.pairs)
	}
}

func TestRankOrdersByScore(t *testing.T) {
	c := &tableClassifier{scores: map[string]float64{"best": 0.99, "worst": 0.01}}
	order, err := NewQAEvaluator(c).Rank(context.Background(),
		[]string{"worst?", "middle?", "best?"},
		[]Answer{{Text: "a"}, {Text: "b"}, {Text: "c"}},
	)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if order[0] != 2 || order[1] != 1 || order[2] != 0 {
		t.Fatalf("unexpected order %v", order)
	}
}

func TestEvaluatorUnavailable(t *testing.T) {
	e := NewQAEvaluator(nil)
	if e.Available() {
		t.Fatalf("evaluator without classifier should be unavailable")
	}
	if _, err := e.Score(context.Background(), []string{"q?"}, []Answer{{Text: "a"}}); !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestScoreRejectsMismatchedInputs(t *testing.T) {
	e := NewQAEvaluator(&tableClassifier{})
	if _, err := e.Score(context.Background(), []string{"q?"}, nil); err == nil {
		t.Fatalf("expected error for mismatched lengths")
	}
}
