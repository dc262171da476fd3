package examgen

import (
	"context"
	"errors"
	"math/rand/v2"
)

var (
	ErrModelUnavailable   = errors.New("model unavailable")
	ErrInvalidAnswerStyle = errors.New("invalid answer style")
	ErrOutOfVocabulary    = errors.New("word not in vocabulary")
	ErrNoDistractors      = errors.New("no distractor candidates")
	ErrInvalidOptionCount = errors.New("option count must be at least 2")
)

// Tokenizer converts text to model token ids and back
type Tokenizer interface {
	Encode(text string) ([]int, error)
	Decode(ids []int) (string, error)
}

// GenerateOptions are the decoding settings passed to a GenerativeModel
type GenerateOptions struct {
	BeamWidth     int
	MaxLength     int
	EarlyStopping bool
	Sample        bool
}

// GenerativeModel produces an output token sequence for an input sequence
type GenerativeModel interface {
	Generate(ctx context.Context, input []int, opts GenerateOptions) ([]int, error)
}

// Classifier scores a text pair. Index 1 of the result is the positive class.
type Classifier interface {
	Classify(ctx context.Context, text, pair string) ([]float64, error)
}

// Neighbor is a word returned by an embedding lookup
type Neighbor struct {
	Word       string
	Similarity float64
}

// EmbeddingIndex answers nearest-neighbour and similarity queries over
// static word vectors. Both methods return ErrOutOfVocabulary for unknown words.
type EmbeddingIndex interface {
	MostSimilar(word string, topn int) ([]Neighbor, error)
	Similarity(a, b string) (float64, error)
}

// Entity is a named entity found in a sentence
type Entity struct {
	Text  string
	Label string
}

type EntityRecognizer interface {
	Entities(ctx context.Context, text string) ([]Entity, error)
}

type SentenceSplitter interface {
	Sentences(text string) []string
}

// BasePair is an (answer, question) pair chosen from a document before
// distractors are attached.
type BasePair struct {
	Answer   string
	Question string
}

// CanonicalDocument is the canonical form of a document kept together with
// the text it was derived from.
type CanonicalDocument struct {
	Source string
	Text   string
}

// BasePairSelector picks up to n pairs keyed 1..n. Pairs are in canonical
// form; a selector that needs casing or punctuation may read doc.Source.
type BasePairSelector interface {
	SelectPairs(ctx context.Context, doc CanonicalDocument, n int) (map[int]BasePair, error)
}

// DistractorStrategy builds the option list for a correct answer
type DistractorStrategy interface {
	Options(ctx context.Context, correct AnswerSpan, numOptions int) ([]Option, error)
}

// DifficultyRater labels a question as easy, medium or hard
type DifficultyRater interface {
	RateDifficulty(ctx context.Context, question, answer string) (string, error)
}

// Rand is the random source used for option placement and sampling
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// NewRand returns a deterministic random source for the given seed
func NewRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func defaultRand() Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
