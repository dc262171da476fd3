package examgen

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

// MaxTokens is the default segment size limit
const MaxTokens = 490

// TextSegmenter packs paragraphs into windows the generative model can take
type TextSegmenter struct {
	tokenizer Tokenizer
	maxTokens int
}

// NewTextSegmenter returns a segmenter; maxTokens <= 0 selects MaxTokens
func NewTextSegmenter(tok Tokenizer, maxTokens int) *TextSegmenter {
	if maxTokens <= 0 {
		maxTokens = MaxTokens
	}
	return &TextSegmenter{tokenizer: tok, maxTokens: maxTokens}
}

// Segment splits text on line breaks and greedily packs the paragraphs, in
// order, into segments of at most maxTokens tokens. A paragraph that alone
// exceeds the limit becomes its own segment. No tokens are dropped. The
// segment text is the decoded paragraphs separated by single spaces.
func (ts *TextSegmenter) Segment(ctx context.Context, text string) ([]Segment, error) {
	_, span := startSpan(ctx, "segmenter.segment")
	segments, err := ts.segment(text)
	span.SetAttributes(attribute.Int("segments", len(segments)))
	endSpan(span, err)
	return segments, err
}

type packedSegment struct {
	tokens     []int
	paragraphs []string
}

func (ts *TextSegmenter) segment(text string) ([]Segment, error) {
	var packed []packedSegment
	var current packedSegment

	for _, paragraph := range strings.Split(text, "\n") {
		if strings.TrimSpace(paragraph) == "" {
			continue
		}
		ids, err := ts.tokenizer.Encode(paragraph)
		if err != nil {
			return nil, fmt.Errorf("failed to tokenize paragraph: %w", err)
		}
		if len(ids) == 0 {
			continue
		}
		if len(current.tokens) > 0 && len(current.tokens)+len(ids) > ts.maxTokens {
			packed = append(packed, current)
			current = packedSegment{}
		}
		decoded, err := ts.tokenizer.Decode(ids)
		if err != nil {
			return nil, fmt.Errorf("failed to decode paragraph: %w", err)
		}
		current.tokens = append(current.tokens, ids...)
		current.paragraphs = append(current.paragraphs, strings.TrimSpace(decoded))
	}
	if len(current.tokens) > 0 {
		packed = append(packed, current)
	}

	// Paragraphs are joined with a space so the last word of one paragraph
	// never runs into the first word of the next.
	segments := make([]Segment, 0, len(packed))
	for i, p := range packed {
		segments = append(segments, Segment{Index: i, Tokens: p.tokens, Text: strings.Join(p.paragraphs, " ")})
	}
	VerboseLog("Segmented %d characters into %d segments", len(text), len(segments))
	return segments, nil
}
