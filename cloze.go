package examgen

import (
	"context"
	"fmt"
	"strings"
)

// ClozeBlank replaces the answer in a cloze question
const ClozeBlank = "__________"

// EntityClozeSelector turns sentences into fill-in-the-blank questions. The
// first not yet used entity of each sentence becomes the answer.
// Entities are recognized on doc.Source and mapped into canonical form.
type EntityClozeSelector struct {
	recognizer EntityRecognizer
	splitter   SentenceSplitter
}

// NewEntityClozeSelector should get the same splitter as Canonicalize so
// that questions line up with the sentences of the canonical document.
func NewEntityClozeSelector(recognizer EntityRecognizer, splitter SentenceSplitter) *EntityClozeSelector {
	if splitter == nil {
		splitter = RegexSplitter{}
	}
	return &EntityClozeSelector{recognizer: recognizer, splitter: splitter}
}

func (s *EntityClozeSelector) SelectPairs(ctx context.Context, doc CanonicalDocument, n int) (map[int]BasePair, error) {
	if s.recognizer == nil {
		return nil, fmt.Errorf("cloze selector: %w", ErrModelUnavailable)
	}
	pairs := make(map[int]BasePair)
	used := make(map[string]bool)

	for _, sentence := range s.splitter.Sentences(joinLines(doc.Source)) {
		if len(pairs) >= n {
			break
		}
		canonical := canonicalSentence(sentence)
		if canonical == "" {
			continue
		}
		entities, err := s.recognizer.Entities(ctx, sentence)
		if err != nil {
			return nil, fmt.Errorf("failed to recognize entities: %w", err)
		}
		for _, ent := range entities {
			answer := canonicalSentence(ent.Text)
			if answer == "" || used[answer] {
				continue
			}
			question, ok := blankOut(canonical, answer)
			if !ok {
				continue
			}
			used[answer] = true
			pairs[len(pairs)+1] = BasePair{Answer: answer, Question: question + "."}
			break
		}
	}
	return pairs, nil
}

// blankOut replaces the first whole-word occurrence of answer in sentence
func blankOut(sentence, answer string) (string, bool) {
	padded := " " + sentence + " "
	i := strings.Index(padded, " "+answer+" ")
	if i < 0 {
		return "", false
	}
	out := padded[:i+1] + ClozeBlank + padded[i+1+len(answer):]
	return strings.TrimSpace(out), true
}
