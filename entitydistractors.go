package examgen

import (
	"context"
	"fmt"
	"strings"
)

// EntityDistractors picks wrong options among the other named entities of
// the same document, preferring entities with a related type label.
type EntityDistractors struct {
	pool []AnswerSpan
	rng  Rand
}

// NewEntityDistractors keeps one entry per distinct (text, label) pair
func NewEntityDistractors(entities []AnswerSpan, rng Rand) *EntityDistractors {
	if rng == nil {
		rng = defaultRand()
	}
	type key struct{ text, label string }
	seen := make(map[key]bool)
	var pool []AnswerSpan
	for _, e := range entities {
		k := key{e.Text, e.Label}
		if seen[k] {
			continue
		}
		seen[k] = true
		pool = append(pool, AnswerSpan{Text: e.Text, Label: e.Label})
	}
	return &EntityDistractors{pool: pool, rng: rng}
}

// Options returns min(numOptions, distinct entities) shuffled options with
// the correct entity flagged. Same-label entities are sampled first and the
// remaining slots come from the rest of the pool.
func (d *EntityDistractors) Options(ctx context.Context, correct AnswerSpan, numOptions int) ([]Option, error) {
	if numOptions < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidOptionCount, numOptions)
	}
	_, span := startSpan(ctx, "distractors.entity")
	defer span.End()

	want := min(numOptions, len(d.pool)) - 1

	var related, others []string
	seen := map[string]bool{correct.Text: true}
	for _, e := range d.pool {
		if seen[e.Text] {
			continue
		}
		seen[e.Text] = true
		if correct.Label != "" && strings.Contains(e.Label, correct.Label) {
			related = append(related, e.Text)
		} else {
			others = append(others, e.Text)
		}
	}

	var chosen []string
	if len(related) >= want {
		chosen = d.sample(related, want)
	} else {
		chosen = append(related, d.sample(others, want-len(related))...)
	}

	options := make([]Option, 0, len(chosen)+1)
	options = append(options, Option{Text: correct.Text, Correct: true})
	for _, text := range chosen {
		options = append(options, Option{Text: text})
	}
	d.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options, nil
}

func (d *EntityDistractors) sample(from []string, k int) []string {
	if k <= 0 {
		return nil
	}
	shuffled := append([]string(nil), from...)
	d.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if k > len(shuffled) {
		k = len(shuffled)
	}
	return shuffled[:k]
}
