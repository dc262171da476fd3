package examgen

import (
	"context"
	"errors"
	"testing"
)

const plantDoc = "plants turn light into sugar through photosynthesis using chlorophyll in their leaves and release oxygen"

func TestBuildOptionsInvariant(t *testing.T) {
	idx := &mapIndex{neighbors: map[string][]Neighbor{
		"photosynthesis": {{"respiration", 0.7}, {"transpiration", 0.6}, {"fermentation", 0.5}, {"digestion", 0.4}, {"osmosis", 0.3}},
	}}
	for seed := uint64(1); seed <= 20; seed++ {
		g := NewDistractorGenerator(idx, NewRand(seed), NopLogger(), nil)
		for n := 2; n <= 5; n++ {
			set, err := g.BuildOptions("photosynthesis", n, plantDoc)
			if err != nil {
				t.Fatalf("BuildOptions(n=%d): %v", n, err)
			}
			if len(set) != n {
				t.Fatalf("expected %d options, got %d", n, len(set))
			}
			for i := 1; i <= n; i++ {
				if _, ok := set[i]; !ok {
					t.Fatalf("missing index %d in %v", i, set)
				}
			}
			if c := countCorrect(set, "photosynthesis"); c != 1 {
				t.Fatalf("correct answer appears %d times in %v", c, set)
			}
		}
	}
}

func TestBuildOptionsUsesNeighbours(t *testing.T) {
	idx := &mapIndex{neighbors: map[string][]Neighbor{
		"cat": {{"dog", 0.9}, {"mouse", 0.8}, {"lion", 0.7}, {"tiger", 0.6}},
	}}
	g := NewDistractorGenerator(idx, NewRand(7), NopLogger(), nil)
	set, err := g.BuildOptions("cat", 4, "unrelated words only")
	if err != nil {
		t.Fatalf("BuildOptions: %v", err)
	}
	allowed := map[string]bool{"cat": true, "dog": true, "mouse": true, "lion": true, "tiger": true}
	for _, v := range set {
		if !allowed[v] {
			t.Fatalf("option %q did not come from the neighbours", v)
		}
	}
}

func TestBuildOptionsFallsBackForUnknownAnswer(t *testing.T) {
	metrics := NewMetrics()
	idx := &mapIndex{
		neighbors: map[string][]Neighbor{},
		sims: map[string]float64{
			"light energy|oxygen": 0.9,
			"light energy|sugar":  0.8,
		},
	}
	g := NewDistractorGenerator(idx, NewRand(3), NopLogger(), metrics)

	set, err := g.BuildOptions("light energy", 3, plantDoc)
	if err != nil {
		t.Fatalf("BuildOptions: %v", err)
	}
	if countCorrect(set, "light energy") != 1 || len(set) != 3 {
		t.Fatalf("unexpected set %v", set)
	}
	for _, v := range set {
		if v == "light" {
			t.Fatalf("word contained in the answer should rank last, got %v", set)
		}
	}
}

func TestDocumentCandidatesRanking(t *testing.T) {
	idx := &mapIndex{sims: map[string]float64{
		"sun|moon": 0.9,
		"sun|star": 0.8,
	}}
	g := NewDistractorGenerator(idx, NewRand(1), NopLogger(), nil)

	got := g.documentCandidates("sun", 10, "the sun and the moon, a star! sun")
	want := []string{"moon", "star", "the", "and", "a"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestBuildOptionsWithoutIndexCyclesShortPool(t *testing.T) {
	g := NewDistractorGenerator(nil, NewRand(9), NopLogger(), nil)
	set, err := g.BuildOptions("paris", 4, "paris france")
	if err != nil {
		t.Fatalf("BuildOptions: %v", err)
	}
	if len(set) != 4 || countCorrect(set, "paris") != 1 {
		t.Fatalf("unexpected set %v", set)
	}
	for _, v := range set {
		if v != "paris" && v != "france" {
			t.Fatalf("unexpected option %q", v)
		}
	}
}

func TestBuildOptionsErrors(t *testing.T) {
	g := NewDistractorGenerator(nil, NewRand(1), NopLogger(), nil)
	if _, err := g.BuildOptions("x", 1, "a b c"); !errors.Is(err, ErrInvalidOptionCount) {
		t.Fatalf("expected ErrInvalidOptionCount, got %v", err)
	}
	if _, err := g.BuildOptions("alone", 4, "alone"); !errors.Is(err, ErrNoDistractors) {
		t.Fatalf("expected ErrNoDistractors, got %v", err)
	}
}

func TestBuildOptionsPropagatesIndexFailure(t *testing.T) {
	g := NewDistractorGenerator(failingIndex{}, NewRand(1), NopLogger(), nil)
	if _, err := g.BuildOptions("x", 4, "a b c"); err == nil || errors.Is(err, ErrOutOfVocabulary) {
		t.Fatalf("expected a non vocabulary error, got %v", err)
	}
}

type failingIndex struct{}

func (failingIndex) MostSimilar(string, int) ([]Neighbor, error) {
	return nil, errors.New("index corrupted")
}

func (failingIndex) Similarity(string, string) (float64, error) {
	return 0, errors.New("index corrupted")
}

func TestForDocumentStrategy(t *testing.T) {
	g := NewDistractorGenerator(nil, NewRand(2), NopLogger(), nil)
	var strategy DistractorStrategy = g.ForDocument(plantDoc)

	options, err := strategy.Options(context.Background(), AnswerSpan{Text: "chlorophyll"}, 4)
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if len(options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(options))
	}
	correct := 0
	for _, o := range options {
		if o.Correct {
			correct++
			if o.Text != "chlorophyll" {
				t.Fatalf("wrong option flagged: %+v", o)
			}
		}
	}
	if correct != 1 {
		t.Fatalf("expected one correct option, got %d", correct)
	}
}
