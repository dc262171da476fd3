package examgen

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
)

const (
	// DefaultNumQuestions is used when the caller asks for zero or fewer questions
	DefaultNumQuestions = 10
	// DefaultNumOptions is the option count of multiple choice answers
	DefaultNumOptions = 4
)

// DistractorFactory builds the option strategy used for the multiple choice
// answers of one article. entities are all entity candidates of the article.
type DistractorFactory func(article string, entities []AnswerSpan) DistractorStrategy

// EntityCooccurrence is the default DistractorFactory. It draws wrong
// options from the other named entities of the article.
func EntityCooccurrence(rng Rand) DistractorFactory {
	return func(_ string, entities []AnswerSpan) DistractorStrategy {
		return NewEntityDistractors(entities, rng)
	}
}

// GeneratorDeps are the collaborators of a QuestionGenerator
type GeneratorDeps struct {
	Tokenizer  Tokenizer
	Model      GenerativeModel
	Recognizer EntityRecognizer // required for multiple_choice and all
	Splitter   SentenceSplitter
	Classifier Classifier        // nil leaves the evaluator unavailable
	Rater      DifficultyRater   // optional
	Distractor DistractorFactory // nil selects EntityCooccurrence
	Rand       Rand
	Logger     *Logger
	Metrics    *Metrics
	Trace      *ModelTrace
	MaxTokens  int
	NumOptions int

	MinSentenceTokens int
}

// QuestionGenerator runs the subjective flow: segment, extract, synthesize,
// optionally rank, and attach entity options to multiple choice answers.
type QuestionGenerator struct {
	segmenter   *TextSegmenter
	extractor   *AnswerCandidateExtractor
	synthesizer *QuestionSynthesizer
	evaluator   *QAEvaluator
	rater       DifficultyRater
	distractor  DistractorFactory
	numOptions  int

	log     *Logger
	metrics *Metrics
	trace   *ModelTrace
}

// NewQuestionGenerator fails with ErrModelUnavailable when the generative
// model or tokenizer is missing.
func NewQuestionGenerator(deps GeneratorDeps) (*QuestionGenerator, error) {
	synth, err := NewQuestionSynthesizer(deps.Tokenizer, deps.Model)
	if err != nil {
		return nil, err
	}
	synth.WithObservers(deps.Metrics, deps.Trace)

	rng := deps.Rand
	if rng == nil {
		rng = defaultRand()
	}
	distractor := deps.Distractor
	if distractor == nil {
		distractor = EntityCooccurrence(rng)
	}
	numOptions := deps.NumOptions
	if numOptions <= 0 {
		numOptions = DefaultNumOptions
	}

	extractor := NewAnswerCandidateExtractor(deps.Splitter, deps.Recognizer)
	extractor.MinSentenceTokens = deps.MinSentenceTokens

	return &QuestionGenerator{
		segmenter:   NewTextSegmenter(deps.Tokenizer, deps.MaxTokens),
		extractor:   extractor,
		synthesizer: synth,
		evaluator:   NewQAEvaluator(deps.Classifier).WithObservers(deps.Metrics, deps.Trace),
		rater:       deps.Rater,
		distractor:  distractor,
		numOptions:  numOptions,
		log:         loggerOrGlobal(deps.Logger),
		metrics:     deps.Metrics,
		trace:       deps.Trace,
	}, nil
}

// Generate returns up to numQuestions records for the article. With
// useEvaluator the records are the best scored ones; otherwise, or when the
// evaluator is unavailable, they are the first ones in generation order.
func (g *QuestionGenerator) Generate(ctx context.Context, article string, useEvaluator bool, numQuestions int, style AnswerStyle) ([]QuestionRecord, error) {
	switch style {
	case StyleSentences, StyleMultipleChoice, StyleAll:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidAnswerStyle, style)
	}
	if numQuestions <= 0 {
		numQuestions = DefaultNumQuestions
	}

	ctx, span := startSpan(ctx, "generator.generate",
		attribute.String("style", string(style)),
		attribute.Int("num_questions", numQuestions),
	)
	records, err := g.generate(ctx, article, useEvaluator, numQuestions, style)
	endSpan(span, err)
	return records, err
}

func (g *QuestionGenerator) generate(ctx context.Context, article string, useEvaluator bool, numQuestions int, style AnswerStyle) ([]QuestionRecord, error) {
	g.log.Info("Starting question generation", "style", style, "num_questions", numQuestions, "chars", len(article))

	pool, err := g.fillPool(ctx, article, style)
	if err != nil {
		return nil, err
	}
	strategy := g.distractor(article, pool.Entities())

	candidates := make([]*Candidate, 0, pool.Size())
	inputs := make([]GenerationInput, 0, pool.Size())
	for !pool.IsEmpty() {
		c := pool.Get()
		candidates = append(candidates, c)
		inputs = append(inputs, NewGenerationInput(c.Span, c.Style))
	}
	g.log.Debug("Candidates extracted", "count", len(candidates))

	questions, err := g.synthesizer.GenerateAll(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	texts := make([]string, len(questions))
	answers := make([]Answer, len(questions))
	for i, q := range questions {
		texts[i] = q.Question
		if q.Style != StyleMultipleChoice {
			answers[i] = Answer{Text: q.Span.Text}
			continue
		}
		options, err := strategy.Options(ctx, q.Span, g.numOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to build options for %q: %w", q.Span.Text, err)
		}
		answers[i] = Answer{Options: options}
	}

	order := g.selectOrder(ctx, useEvaluator, numQuestions, texts, answers)

	kept := make(map[int]bool, len(order))
	records := make([]QuestionRecord, 0, len(order))
	for _, idx := range order {
		kept[idx] = true
		record := newRecord(texts[idx], answers[idx], questions[idx].Style)
		record.Difficulty = g.rate(ctx, record)
		records = append(records, record)
		g.metrics.QuestionsGenerated(record.Style, 1)
	}
	for i, c := range candidates {
		if kept[i] {
			g.trace.LogCandidateResult(c.ID, "kept", texts[i])
		} else {
			g.trace.LogCandidateResult(c.ID, "dropped", "outside requested count")
		}
	}

	g.log.Info("Question generation complete", "candidates", len(candidates), "returned", len(records))
	return records, nil
}

func (g *QuestionGenerator) fillPool(ctx context.Context, article string, style AnswerStyle) (*CandidatePool, error) {
	pool := NewCandidatePool()

	if style == StyleSentences || style == StyleAll {
		segments, err := g.segmenter.Segment(ctx, article)
		if err != nil {
			return nil, fmt.Errorf("failed to segment article: %w", err)
		}
		for _, seg := range segments {
			for _, span := range g.extractor.Sentences(seg) {
				pool.Add(span, StyleSentences)
			}
		}
	}

	// Entity extraction reads the whole article, not the segments.
	if style == StyleMultipleChoice || style == StyleAll {
		spans, err := g.extractor.Entities(ctx, article)
		if err != nil {
			return nil, fmt.Errorf("failed to extract entities: %w", err)
		}
		for _, span := range spans {
			pool.Add(span, StyleMultipleChoice)
		}
	}
	return pool, nil
}

func (g *QuestionGenerator) selectOrder(ctx context.Context, useEvaluator bool, numQuestions int, questions []string, answers []Answer) []int {
	n := min(numQuestions, len(questions))

	if useEvaluator {
		if !g.evaluator.Available() {
			g.log.Warn("Evaluator unavailable, keeping generation order")
			g.metrics.EvaluatorSkipped()
		} else {
			order, err := g.evaluator.Rank(ctx, questions, answers)
			if err == nil {
				return order[:n]
			}
			g.log.Warn("Evaluator failed, keeping generation order", "error", err)
			g.metrics.EvaluatorSkipped()
		}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func (g *QuestionGenerator) rate(ctx context.Context, record QuestionRecord) string {
	if g.rater == nil {
		return ""
	}
	level, err := g.rater.RateDifficulty(ctx, record.Question, record.Answer.CorrectText())
	g.metrics.ModelCall("difficulty", err)
	if err != nil {
		g.log.Warn("Failed to rate difficulty", "question", record.Question, "error", err)
		return ""
	}
	return level
}
