package examgen

import (
	"context"
	"strings"
	"testing"
)

func paragraph(words int, prefix string) string {
	parts := make([]string, words)
	for i := range parts {
		parts[i] = prefix
	}
	return strings.Join(parts, " ")
}

func TestSegmentPacksParagraphsWithinLimit(t *testing.T) {
	tok := newWordTokenizer()
	ts := NewTextSegmenter(tok, 10)

	text := paragraph(4, "a") + "\n" + paragraph(4, "b") + "\n\n" + paragraph(4, "c") + "\n" + paragraph(9, "d")
	segments, err := ts.Segment(context.Background(), text)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}

	total := 0
	for _, s := range segments {
		if len(s.Tokens) > 10 {
			t.Fatalf("segment %d has %d tokens", s.Index, len(s.Tokens))
		}
		total += len(s.Tokens)
	}
	if total != 21 {
		t.Fatalf("expected 21 tokens across segments, got %d", total)
	}
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	if segments[0].Text != paragraph(4, "a")+" "+paragraph(4, "b") {
		t.Fatalf("unexpected first segment %q", segments[0].Text)
	}
}

func TestSegmentKeepsOversizedParagraph(t *testing.T) {
	tok := newWordTokenizer()
	ts := NewTextSegmenter(tok, 5)

	segments, err := ts.Segment(context.Background(), "x y\n"+paragraph(8, "big")+"\nz")
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	if len(segments[1].Tokens) != 8 {
		t.Fatalf("oversized paragraph should stay whole, got %d tokens", len(segments[1].Tokens))
	}
}

func TestSegmentDefaultLimit(t *testing.T) {
	tok := newWordTokenizer()
	ts := NewTextSegmenter(tok, 0)

	var paragraphs []string
	for i := 0; i < 30; i++ {
		paragraphs = append(paragraphs, paragraph(40, "w"))
	}
	segments, err := ts.Segment(context.Background(), strings.Join(paragraphs, "\n"))
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	total := 0
	for _, s := range segments {
		if len(s.Tokens) > MaxTokens {
			t.Fatalf("segment %d exceeds %d tokens: %d", s.Index, MaxTokens, len(s.Tokens))
		}
		total += len(s.Tokens)
	}
	if total != 1200 {
		t.Fatalf("lost tokens: got %d want 1200", total)
	}
}

func TestSegmentEmptyText(t *testing.T) {
	segments, err := NewTextSegmenter(newWordTokenizer(), 0).Segment(context.Background(), "\n  \n")
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(segments) != 0 {
		t.Fatalf("expected no segments, got %d", len(segments))
	}
}

// runeTokenizer maps every rune to its code point, so decoding concatenates
// tokens without adding separators.
type runeTokenizer struct{}

func (runeTokenizer) Encode(text string) ([]int, error) {
	ids := make([]int, 0, len(text))
	for _, r := range text {
		ids = append(ids, int(r))
	}
	return ids, nil
}

func (runeTokenizer) Decode(ids []int) (string, error) {
	runes := make([]rune, len(ids))
	for i, id := range ids {
		runes[i] = rune(id)
	}
	return string(runes), nil
}

func TestSegmentKeepsWordBoundaryAfterHeading(t *testing.T) {
	text := "Introduction\nCells are the basic unit of life.\nSummary\nMitochondria make energy."
	segments, err := NewTextSegmenter(runeTokenizer{}, 0).Segment(context.Background(), text)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	want := "Introduction Cells are the basic unit of life. Summary Mitochondria make energy."
	if segments[0].Text != want {
		t.Fatalf("segment text = %q, want %q", segments[0].Text, want)
	}
	if len(segments[0].Tokens) != len(strings.ReplaceAll(text, "\n", "")) {
		t.Fatalf("token count changed: %d", len(segments[0].Tokens))
	}

	spans := NewAnswerCandidateExtractor(nil, nil).Sentences(segments[0])
	if len(spans) != 2 || spans[0].Text != "Introduction Cells are the basic unit of life." || spans[1].Text != "Summary Mitochondria make energy." {
		t.Fatalf("unexpected spans %+v", spans)
	}
}
