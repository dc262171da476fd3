package examgen

import (
	"fmt"
	"sync"
)

// Candidate is an extracted answer span waiting for question synthesis
type Candidate struct {
	ID    string
	Span  AnswerSpan
	Style AnswerStyle
}

// CandidatePool manages a FIFO queue of extracted candidates
type CandidatePool struct {
	mu         sync.RWMutex
	candidates map[string]*Candidate
	queue      []string // FIFO queue of candidate IDs
	nextID     int
}

// NewCandidatePool creates a new candidate pool
func NewCandidatePool() *CandidatePool {
	return &CandidatePool{
		candidates: make(map[string]*Candidate),
		queue:      make([]string, 0),
	}
}

// Add enqueues a span and returns the candidate created for it
func (cp *CandidatePool) Add(span AnswerSpan, style AnswerStyle) *Candidate {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	cp.nextID++
	c := &Candidate{ID: fmt.Sprintf("c%04d", cp.nextID), Span: span, Style: style}
	cp.candidates[c.ID] = c
	cp.queue = append(cp.queue, c.ID)
	return c
}

// Get removes and returns the oldest candidate, or nil when empty
func (cp *CandidatePool) Get() *Candidate {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	if len(cp.queue) == 0 {
		return nil
	}

	id := cp.queue[0]
	cp.queue = cp.queue[1:]

	c := cp.candidates[id]
	delete(cp.candidates, id)
	return c
}

// Size returns the number of queued candidates
func (cp *CandidatePool) Size() int {
	cp.mu.RLock()
	defer cp.mu.RUnlock()
	return len(cp.queue)
}

// IsEmpty returns true if the pool is empty
func (cp *CandidatePool) IsEmpty() bool {
	return cp.Size() == 0
}

// GetAll returns the queued candidates in queue order without removing them
func (cp *CandidatePool) GetAll() []*Candidate {
	cp.mu.RLock()
	defer cp.mu.RUnlock()

	out := make([]*Candidate, 0, len(cp.queue))
	for _, id := range cp.queue {
		out = append(out, cp.candidates[id])
	}
	return out
}

// Entities returns the spans of all queued entity candidates
func (cp *CandidatePool) Entities() []AnswerSpan {
	var spans []AnswerSpan
	for _, c := range cp.GetAll() {
		if c.Style == StyleMultipleChoice {
			spans = append(spans, c.Span)
		}
	}
	return spans
}
