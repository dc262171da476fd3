package examgen

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

var (
	nonWordPattern = regexp.MustCompile(`(?:[^\s\p{L}\p{N}]|_)+`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// Canonicalize joins lines, splits the text into sentences, then lower-cases
// each sentence, strips everything but letters, digits and spaces and
// terminates it with a period. The splitter sees the text before lower-casing.
// Casing and punctuation are lost.
func Canonicalize(text string, splitter SentenceSplitter) string {
	if splitter == nil {
		splitter = RegexSplitter{}
	}

	var sb strings.Builder
	for _, sentence := range splitter.Sentences(joinLines(text)) {
		sentence = canonicalSentence(sentence)
		if sentence == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(sentence)
		sb.WriteByte('.')
	}
	return sb.String()
}

func joinLines(text string) string {
	return strings.ReplaceAll(text, "\n", " ")
}

// canonicalSentence is the canonical form of one sentence or phrase,
// without the terminal period.
func canonicalSentence(s string) string {
	s = nonWordPattern.ReplaceAllString(strings.ToLower(s), "")
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

// ObjectiveGenerator runs the objective flow: canonicalize, select base
// pairs, then attach embedding distractors to each pair.
type ObjectiveGenerator struct {
	selector     BasePairSelector
	distractors  *DistractorGenerator
	splitter     SentenceSplitter
	numQuestions int
	numOptions   int
	log          *Logger
	metrics      *Metrics
}

func NewObjectiveGenerator(selector BasePairSelector, distractors *DistractorGenerator, splitter SentenceSplitter, numQuestions, numOptions int, logger *Logger, metrics *Metrics) *ObjectiveGenerator {
	if numQuestions <= 0 {
		numQuestions = DefaultNumQuestions
	}
	if numOptions <= 0 {
		numOptions = DefaultNumOptions
	}
	return &ObjectiveGenerator{
		selector:     selector,
		distractors:  distractors,
		splitter:     splitter,
		numQuestions: numQuestions,
		numOptions:   numOptions,
		log:          loggerOrGlobal(logger),
		metrics:      metrics,
	}
}

// GenerateQuestionsDict returns questions keyed 1..numQuestions. Indices the
// selector did not produce are absent from the result.
func (g *ObjectiveGenerator) GenerateQuestionsDict(ctx context.Context, document string) (map[int]ObjectiveQuestion, error) {
	ctx, span := startSpan(ctx, "objective.generate", attribute.Int("num_questions", g.numQuestions))
	out, err := g.generate(ctx, document)
	endSpan(span, err)
	return out, err
}

func (g *ObjectiveGenerator) generate(ctx context.Context, document string) (map[int]ObjectiveQuestion, error) {
	doc := CanonicalDocument{Source: document, Text: Canonicalize(document, g.splitter)}

	pairs, err := g.selector.SelectPairs(ctx, doc, g.numQuestions)
	if err != nil {
		return nil, fmt.Errorf("failed to select answer/question pairs: %w", err)
	}

	out := make(map[int]ObjectiveQuestion, len(pairs))
	for i := 1; i <= g.numQuestions; i++ {
		pair, ok := pairs[i]
		if !ok {
			continue
		}
		options, err := g.distractors.BuildOptions(pair.Answer, g.numOptions, doc.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to build options for %q: %w", pair.Answer, err)
		}
		out[i] = ObjectiveQuestion{Question: pair.Question, Answer: pair.Answer, Options: options}
	}
	g.metrics.QuestionsGenerated(StyleObjective, len(out))
	g.log.Info("Objective generation complete", "requested", g.numQuestions, "returned", len(out))
	return out, nil
}
