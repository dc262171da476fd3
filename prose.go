package examgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
)

// ProseRecognizer provides named entities and sentence boundaries using the
// prose NLP pipeline. It implements EntityRecognizer and SentenceSplitter.
type ProseRecognizer struct{}

func NewProseRecognizer() *ProseRecognizer {
	return &ProseRecognizer{}
}

func (ProseRecognizer) Entities(ctx context.Context, text string) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("failed to analyze text: %w", err)
	}
	var entities []Entity
	for _, ent := range doc.Entities() {
		entities = append(entities, Entity{Text: ent.Text, Label: ent.Label})
	}
	return entities, nil
}

func (ProseRecognizer) Sentences(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		VerboseLog("prose segmentation failed, using punctuation split: %v", err)
		return RegexSplitter{}.Sentences(text)
	}
	var out []string
	for _, s := range doc.Sentences() {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}
