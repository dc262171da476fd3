package examgen

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var sentencePattern = regexp.MustCompile(`(?s).*?[.!?]`)

// RegexSplitter splits text after '.', '!' and '?'. Trailing text without
// terminal punctuation is kept as a final sentence.
type RegexSplitter struct{}

func (RegexSplitter) Sentences(text string) []string {
	var out []string
	rest := text
	for _, loc := range sentencePattern.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[loc[0]:loc[1]]); s != "" {
			out = append(out, s)
		}
		rest = text[loc[1]:]
	}
	if s := strings.TrimSpace(rest); s != "" {
		out = append(out, s)
	}
	return out
}

// AnswerCandidateExtractor finds answer spans in text
type AnswerCandidateExtractor struct {
	splitter   SentenceSplitter
	recognizer EntityRecognizer

	// MinSentenceTokens drops sentences with this many whitespace tokens or
	// fewer. Zero keeps all.
	MinSentenceTokens int
}

// NewAnswerCandidateExtractor builds an extractor. recognizer may be nil when
// entity mode is not used. splitter is used by entity mode and defaults to RegexSplitter;
// sentence mode always splits on terminal punctuation.
func NewAnswerCandidateExtractor(splitter SentenceSplitter, recognizer EntityRecognizer) *AnswerCandidateExtractor {
	if splitter == nil {
		splitter = RegexSplitter{}
	}
	return &AnswerCandidateExtractor{splitter: splitter, recognizer: recognizer}
}

// Sentences returns one span per sentence of the segment, with the whole
// segment as context. Repeated sentences are kept once.
func (e *AnswerCandidateExtractor) Sentences(segment Segment) []AnswerSpan {
	var spans []AnswerSpan
	seen := make(map[string]bool)
	for _, sentence := range (RegexSplitter{}).Sentences(segment.Text) {
		if e.MinSentenceTokens > 0 && len(strings.Fields(sentence)) <= e.MinSentenceTokens {
			continue
		}
		if seen[sentence] {
			continue
		}
		seen[sentence] = true
		spans = append(spans, AnswerSpan{Text: sentence, Context: segment.Text})
	}
	return spans
}

// Entities runs the recognizer over every sentence of the full text. Each
// entity becomes a span whose context is its sentence.
func (e *AnswerCandidateExtractor) Entities(ctx context.Context, text string) ([]AnswerSpan, error) {
	if e.recognizer == nil {
		return nil, fmt.Errorf("entity extraction: %w", ErrModelUnavailable)
	}
	ctx, span := startSpan(ctx, "extractor.entities")
	var spans []AnswerSpan
	var err error
	for _, sentence := range e.splitter.Sentences(text) {
		var entities []Entity
		entities, err = e.recognizer.Entities(ctx, sentence)
		if err != nil {
			err = fmt.Errorf("failed to recognize entities: %w", err)
			break
		}
		for _, ent := range entities {
			spans = append(spans, AnswerSpan{Text: ent.Text, Context: sentence, Label: ent.Label})
		}
	}
	endSpan(span, err)
	if err != nil {
		return nil, err
	}
	return spans, nil
}
