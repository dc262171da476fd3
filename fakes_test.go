package examgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// wordTokenizer maps whitespace separated words to ids
type wordTokenizer struct {
	ids   map[string]int
	words []string
}

func newWordTokenizer() *wordTokenizer {
	return &wordTokenizer{ids: make(map[string]int)}
}

func (t *wordTokenizer) Encode(text string) ([]int, error) {
	fields := strings.Fields(text)
	out := make([]int, len(fields))
	for i, w := range fields {
		id, ok := t.ids[w]
		if !ok {
			id = len(t.words)
			t.ids[w] = id
			t.words = append(t.words, w)
		}
		out[i] = id
	}
	return out, nil
}

func (t *wordTokenizer) Decode(ids []int) (string, error) {
	words := make([]string, len(ids))
	for i, id := range ids {
		if id < 0 || id >= len(t.words) {
			return "", fmt.Errorf("unknown id %d", id)
		}
		words[i] = t.words[id]
	}
	return strings.Join(words, " "), nil
}

// echoModel answers "what is <answer>? <noise>" for every input
type echoModel struct {
	tok       *wordTokenizer
	failOn    string
	calls     int
	lastInput int
	lastOpts  GenerateOptions
}

func (m *echoModel) Generate(ctx context.Context, input []int, opts GenerateOptions) ([]int, error) {
	m.calls++
	m.lastInput = len(input)
	m.lastOpts = opts
	text, err := m.tok.Decode(input)
	if err != nil {
		return nil, err
	}
	answer := text
	if i := strings.Index(text, "<context>"); i >= 0 {
		answer = strings.TrimSpace(strings.TrimPrefix(text[:i], "<answer>"))
	}
	if m.failOn != "" && strings.Contains(answer, m.failOn) {
		return nil, errors.New("generation failed")
	}
	return m.tok.Encode("what is " + answer + "? and more text? here")
}

// tableClassifier scores questions containing a key with the mapped probability
type tableClassifier struct {
	scores map[string]float64
	err    error
	pairs  []string
}

func (c *tableClassifier) Classify(ctx context.Context, text, pair string) ([]float64, error) {
	c.pairs = append(c.pairs, pair)
	if c.err != nil {
		return nil, c.err
	}
	for key, p := range c.scores {
		if strings.Contains(text, key) {
			return []float64{1 - p, p}, nil
		}
	}
	return []float64{0.5, 0.5}, nil
}

// mapIndex is an EmbeddingIndex over fixed tables
type mapIndex struct {
	neighbors map[string][]Neighbor
	sims      map[string]float64 // key "a|b"
}

func (m *mapIndex) MostSimilar(word string, topn int) ([]Neighbor, error) {
	n, ok := m.neighbors[word]
	if !ok {
		return nil, fmt.Errorf("%q: %w", word, ErrOutOfVocabulary)
	}
	if len(n) > topn {
		n = n[:topn]
	}
	return n, nil
}

func (m *mapIndex) Similarity(a, b string) (float64, error) {
	if s, ok := m.sims[a+"|"+b]; ok {
		return s, nil
	}
	return 0, ErrOutOfVocabulary
}

// tableRecognizer reports every known entity that occurs in the text
type tableRecognizer struct {
	entities []Entity
	err      error
}

func (r *tableRecognizer) Entities(ctx context.Context, text string) ([]Entity, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []Entity
	for _, e := range r.entities {
		if strings.Contains(text, e.Text) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fixedRater struct {
	level string
	err   error
}

func (r fixedRater) RateDifficulty(ctx context.Context, question, answer string) (string, error) {
	return r.level, r.err
}

func countCorrect(set DistractorSet, correct string) int {
	n := 0
	for _, v := range set {
		if v == correct {
			n++
		}
	}
	return n
}
