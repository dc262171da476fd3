package examgen

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// VectorIndex is an in-memory EmbeddingIndex with cosine similarity.
// Words are matched case-insensitively.
type VectorIndex struct {
	words   []string
	vectors [][]float32 // unit length
	lookup  map[string]int
}

func NewVectorIndex() *VectorIndex {
	return &VectorIndex{lookup: make(map[string]int)}
}

// Add stores a vector, replacing any previous one for the word
func (vi *VectorIndex) Add(word string, vec []float32) error {
	word = strings.ToLower(word)
	if len(vi.vectors) > 0 && len(vec) != len(vi.vectors[0]) {
		return fmt.Errorf("vector for %q has %d dimensions, index has %d", word, len(vec), len(vi.vectors[0]))
	}
	unit := normalize(vec)
	if i, ok := vi.lookup[word]; ok {
		vi.vectors[i] = unit
		return nil
	}
	vi.lookup[word] = len(vi.words)
	vi.words = append(vi.words, word)
	vi.vectors = append(vi.vectors, unit)
	return nil
}

func (vi *VectorIndex) Len() int {
	return len(vi.words)
}

func (vi *VectorIndex) vector(word string) ([]float32, error) {
	i, ok := vi.lookup[strings.ToLower(word)]
	if !ok {
		return nil, fmt.Errorf("%q: %w", word, ErrOutOfVocabulary)
	}
	return vi.vectors[i], nil
}

func (vi *VectorIndex) Similarity(a, b string) (float64, error) {
	va, err := vi.vector(a)
	if err != nil {
		return 0, err
	}
	vb, err := vi.vector(b)
	if err != nil {
		return 0, err
	}
	return dot(va, vb), nil
}

// MostSimilar returns up to topn words ordered by descending similarity,
// excluding the query word itself.
func (vi *VectorIndex) MostSimilar(word string, topn int) ([]Neighbor, error) {
	query, err := vi.vector(word)
	if err != nil {
		return nil, err
	}
	self := vi.lookup[strings.ToLower(word)]

	neighbors := make([]Neighbor, 0, len(vi.words))
	for i, w := range vi.words {
		if i == self {
			continue
		}
		neighbors = append(neighbors, Neighbor{Word: w, Similarity: dot(query, vi.vectors[i])})
	}
	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Similarity > neighbors[j].Similarity
	})
	if len(neighbors) > topn {
		neighbors = neighbors[:topn]
	}
	return neighbors, nil
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	out := make([]float32, len(vec))
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}
