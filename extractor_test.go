package examgen

import (
	"context"
	"errors"
	"testing"
)

func TestRegexSplitter(t *testing.T) {
	got := RegexSplitter{}.Sentences("Is it? Yes! It is.  And a tail")
	want := []string{"Is it?", "Yes!", "It is.", "And a tail"}
	if len(got) != len(want) {
		t.Fatalf("got %q want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sentence %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestExtractSentencesUsesSegmentAsContext(t *testing.T) {
	seg := Segment{Text: "Dogs are mammals. Cats are mammals too. Dogs are mammals."}
	spans := NewAnswerCandidateExtractor(nil, nil).Sentences(seg)

	if len(spans) != 2 {
		t.Fatalf("expected 2 distinct spans, got %d: %+v", len(spans), spans)
	}
	if spans[0].Text != "Dogs are mammals." || spans[1].Text != "Cats are mammals too." {
		t.Fatalf("unexpected spans %+v", spans)
	}
	for _, s := range spans {
		if s.Context != seg.Text {
			t.Fatalf("span context should be the segment, got %q", s.Context)
		}
	}
}

func TestExtractSentencesKeepsLongSentenceWhole(t *testing.T) {
	long := "The mitochondrion, which is found in nearly every eukaryotic cell of the body, " +
		"produces energy for the organism through respiration; this process is called cellular respiration."
	spans := NewAnswerCandidateExtractor(nil, nil).Sentences(Segment{Text: long})

	if len(spans) != 1 {
		t.Fatalf("expected one span for one sentence, got %d: %+v", len(spans), spans)
	}
	if spans[0].Text != long || spans[0].Context != long {
		t.Fatalf("span should be the whole sentence, got %+v", spans[0])
	}
}

func TestExtractSentencesMinTokens(t *testing.T) {
	e := NewAnswerCandidateExtractor(nil, nil)
	e.MinSentenceTokens = 5
	spans := e.Sentences(Segment{Text: "Dogs are mammals. This sentence has five tokens. This one has six whitespace tokens."})
	if len(spans) != 1 || spans[0].Text != "This one has six whitespace tokens." {
		t.Fatalf("unexpected spans %+v", spans)
	}
}

func TestExtractEntitiesPerSentence(t *testing.T) {
	rec := &tableRecognizer{entities: []Entity{
		{Text: "Paris", Label: "GPE"},
		{Text: "France", Label: "GPE"},
		{Text: "Einstein", Label: "PERSON"},
	}}
	e := NewAnswerCandidateExtractor(nil, rec)

	spans, err := e.Entities(context.Background(), "Paris is in France. Einstein visited once.")
	if err != nil {
		t.Fatalf("Entities: %v", err)
	}
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	if spans[0].Context != "Paris is in France." || spans[1].Context != spans[0].Context {
		t.Fatalf("entities of one sentence should share it as context: %+v", spans)
	}
	if spans[2].Text != "Einstein" || spans[2].Label != "PERSON" || spans[2].Context != "Einstein visited once." {
		t.Fatalf("unexpected span %+v", spans[2])
	}
}

func TestExtractEntitiesWithoutRecognizer(t *testing.T) {
	_, err := NewAnswerCandidateExtractor(nil, nil).Entities(context.Background(), "Paris.")
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}
