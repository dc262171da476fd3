package examgen

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// DistractorGenerator builds option sets from embedding neighbours of the
// correct answer, falling back to words of the enclosing document.
type DistractorGenerator struct {
	index   EmbeddingIndex
	rng     Rand
	log     *Logger
	metrics *Metrics
}

// NewDistractorGenerator accepts a nil index, in which case every lookup
// uses the document fallback. A nil rng selects an unseeded source.
func NewDistractorGenerator(index EmbeddingIndex, rng Rand, logger *Logger, metrics *Metrics) *DistractorGenerator {
	if rng == nil {
		rng = defaultRand()
	}
	return &DistractorGenerator{index: index, rng: rng, log: loggerOrGlobal(logger), metrics: metrics}
}

// BuildOptions returns exactly numOptions entries keyed 1..numOptions with
// the correct answer at one random index. Slots 1..numOptions are filled
// from the distractor pool first and the correct answer then overwrites one
// of them, so the distractor in that slot is dropped.
func (g *DistractorGenerator) BuildOptions(correct string, numOptions int, document string) (DistractorSet, error) {
	if numOptions < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidOptionCount, numOptions)
	}
	pool, err := g.candidates(correct, numOptions, document)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w for %q", ErrNoDistractors, correct)
	}

	set := make(DistractorSet, numOptions)
	for i := 1; i <= numOptions; i++ {
		set[i] = pool[(i-1)%len(pool)]
	}
	set[g.rng.IntN(numOptions)+1] = correct
	return set, nil
}

func (g *DistractorGenerator) candidates(correct string, n int, document string) ([]string, error) {
	if g.index != nil {
		neighbors, err := g.index.MostSimilar(correct, n)
		switch {
		case err == nil:
			words := make([]string, 0, len(neighbors))
			for _, nb := range neighbors {
				if nb.Word != correct {
					words = append(words, nb.Word)
				}
			}
			if len(words) >= n {
				return words, nil
			}
			g.log.Debug("too few embedding neighbours, using document words", "answer", correct, "found", len(words))
		case errors.Is(err, ErrOutOfVocabulary):
			g.log.Debug("answer not in embedding vocabulary, using document words", "answer", correct)
		default:
			return nil, fmt.Errorf("failed to look up neighbours of %q: %w", correct, err)
		}
	}
	g.metrics.DistractorFallback()
	return g.documentCandidates(correct, n, document), nil
}

// documentCandidates ranks the distinct words of the document by similarity
// to the answer. Words contained in the answer score -1 and words without
// a vector score 0.
func (g *DistractorGenerator) documentCandidates(correct string, n int, document string) []string {
	type scored struct {
		word  string
		score float64
	}

	var pool []scored
	for _, word := range documentWords(document) {
		if word == correct {
			continue
		}
		s := scored{word: word}
		switch {
		case strings.Contains(correct, word):
			s.score = -1
		case g.index != nil:
			if sim, err := g.index.Similarity(correct, word); err == nil {
				s.score = sim
			}
		}
		pool = append(pool, s)
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].score > pool[j].score
	})
	if len(pool) > n {
		pool = pool[:n]
	}
	words := make([]string, len(pool))
	for i, s := range pool {
		words[i] = s.word
	}
	return words
}

func documentWords(document string) []string {
	seen := make(map[string]bool)
	var words []string
	for _, field := range strings.Fields(document) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		words = append(words, word)
	}
	return words
}

// ForDocument adapts the generator to DistractorStrategy for one document
func (g *DistractorGenerator) ForDocument(document string) DistractorStrategy {
	return &documentDistractors{gen: g, document: document}
}

type documentDistractors struct {
	gen      *DistractorGenerator
	document string
}

func (d *documentDistractors) Options(ctx context.Context, correct AnswerSpan, numOptions int) ([]Option, error) {
	_, span := startSpan(ctx, "distractors.embedding")
	set, err := d.gen.BuildOptions(correct.Text, numOptions, d.document)
	endSpan(span, err)
	if err != nil {
		return nil, err
	}
	return set.toOptions(correct.Text), nil
}
