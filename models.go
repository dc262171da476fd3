package examgen

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Segment is a token-bounded window of the source document
type Segment struct {
	Index  int    `json:"index"`
	Tokens []int  `json:"-"`
	Text   string `json:"text"`
}

// AnswerSpan is a candidate answer together with the context it was taken from.
// Label is only set for spans produced by entity extraction.
type AnswerSpan struct {
	Text    string `json:"text"`
	Context string `json:"context"`
	Label   string `json:"label,omitempty"`
}

// GenerationInput is an answer span formatted for the generative model
type GenerationInput struct {
	Span  AnswerSpan
	Style AnswerStyle
	Text  string
}

// GeneratedQuestion ties a synthesized question to the span it came from
type GeneratedQuestion struct {
	Question string
	Span     AnswerSpan
	Style    AnswerStyle
}

// ScoredPair is a generated question with its evaluator score
type ScoredPair struct {
	Question GeneratedQuestion
	Score    float64
}

// AnswerStyle selects which kind of answers the subjective flow produces
type AnswerStyle string

const (
	StyleSentences      AnswerStyle = "sentences"
	StyleMultipleChoice AnswerStyle = "multiple_choice"
	StyleAll            AnswerStyle = "all"
	StyleObjective      AnswerStyle = "objective"
)

// ParseAnswerStyle validates a user supplied style name
func ParseAnswerStyle(s string) (AnswerStyle, error) {
	switch AnswerStyle(s) {
	case StyleSentences, StyleMultipleChoice, StyleAll:
		return AnswerStyle(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAnswerStyle, s)
}

// Option is one choice of a multiple choice answer
type Option struct {
	Text    string `json:"answer"`
	Correct bool   `json:"correct"`
}

// Answer is either a plain string or a list of options with exactly one
// flagged correct. It marshals to a JSON string or array accordingly.
type Answer struct {
	Text    string
	Options []Option
}

// IsMultipleChoice reports whether the answer carries options
func (a Answer) IsMultipleChoice() bool {
	return len(a.Options) > 0
}

// CorrectText returns the text that should be scored for this answer.
// For option lists this is the correct option, or the first one if none is flagged.
func (a Answer) CorrectText() string {
	if !a.IsMultipleChoice() {
		return a.Text
	}
	for _, o := range a.Options {
		if o.Correct {
			return o.Text
		}
	}
	return a.Options[0].Text
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.IsMultipleChoice() {
		return json.Marshal(a.Options)
	}
	return json.Marshal(a.Text)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		a.Text = text
		a.Options = nil
		return nil
	}
	var options []Option
	if err := json.Unmarshal(data, &options); err != nil {
		return fmt.Errorf("failed to parse answer: %w", err)
	}
	a.Text = ""
	a.Options = options
	return nil
}

// QuestionRecord is the unit returned to callers of both flows
type QuestionRecord struct {
	ID         string      `json:"id"`
	Question   string      `json:"question"`
	Answer     Answer      `json:"answer"`
	Style      AnswerStyle `json:"style"`
	Difficulty string      `json:"difficulty,omitempty"`
}

func newRecord(question string, answer Answer, style AnswerStyle) QuestionRecord {
	return QuestionRecord{
		ID:       uuid.NewString(),
		Question: question,
		Answer:   answer,
		Style:    style,
	}
}

// DistractorSet maps option index (1..n) to option text
type DistractorSet map[int]string

// ObjectiveQuestion is one entry of the objective flow output
type ObjectiveQuestion struct {
	Question string        `json:"question"`
	Answer   string        `json:"answer"`
	Options  DistractorSet `json:"options"`
}

// Record converts the objective question into a QuestionRecord whose
// options follow the index order of the distractor set.
func (q ObjectiveQuestion) Record() QuestionRecord {
	return newRecord(q.Question, Answer{Options: q.Options.toOptions(q.Answer)}, StyleObjective)
}

func (s DistractorSet) toOptions(correct string) []Option {
	options := make([]Option, 0, len(s))
	for i := 1; i <= len(s); i++ {
		text, ok := s[i]
		if !ok {
			continue
		}
		options = append(options, Option{Text: text, Correct: text == correct})
	}
	return options
}
