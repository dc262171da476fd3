package examgen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

const (
	beamWidth        = 4
	maxQuestionLen   = 64
	maxEncoderTokens = 512
)

// QuestionSynthesizer turns (answer, context) pairs into questions
type QuestionSynthesizer struct {
	tokenizer Tokenizer
	model     GenerativeModel
	opts      GenerateOptions
	maxInput  int

	metrics *Metrics
	trace   *ModelTrace
}

// NewQuestionSynthesizer fails with ErrModelUnavailable when either the
// tokenizer or the model is missing.
func NewQuestionSynthesizer(tok Tokenizer, model GenerativeModel) (*QuestionSynthesizer, error) {
	if tok == nil || model == nil {
		return nil, fmt.Errorf("question synthesizer: %w", ErrModelUnavailable)
	}
	return &QuestionSynthesizer{
		tokenizer: tok,
		model:     model,
		opts: GenerateOptions{
			BeamWidth:     beamWidth,
			MaxLength:     maxQuestionLen,
			EarlyStopping: true,
			Sample:        false,
		},
		maxInput: maxEncoderTokens,
	}, nil
}

// WithObservers attaches metrics and a model trace. Either may be nil.
func (qs *QuestionSynthesizer) WithObservers(m *Metrics, t *ModelTrace) *QuestionSynthesizer {
	qs.metrics = m
	qs.trace = t
	return qs
}

// FormatInput builds the marked-up model input for an answer and its context
func FormatInput(answer, context string) string {
	return fmt.Sprintf("<answer> %s <context> %s", answer, context)
}

// NewGenerationInput formats a span for the generative model
func NewGenerationInput(span AnswerSpan, style AnswerStyle) GenerationInput {
	return GenerationInput{Span: span, Style: style, Text: FormatInput(span.Text, span.Context)}
}

// TrimToQuestion keeps the text before the first '?' and re-appends it
func TrimToQuestion(s string) string {
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s) + "?"
}

// Generate synthesizes one question
func (qs *QuestionSynthesizer) Generate(ctx context.Context, in GenerationInput) (string, error) {
	ids, err := qs.tokenizer.Encode(in.Text)
	if err != nil {
		return "", fmt.Errorf("failed to encode input: %w", err)
	}
	if len(ids) > qs.maxInput {
		ids = ids[:qs.maxInput]
	}

	qs.trace.LogModelRequest("QuestionSynthesizer", in.Text)
	start := time.Now()
	out, err := qs.model.Generate(ctx, ids, qs.opts)
	qs.metrics.ModelCall("synthesizer", err)
	qs.metrics.ObserveSynthesis(time.Since(start))
	if err != nil {
		return "", fmt.Errorf("failed to generate question: %w", err)
	}

	decoded, err := qs.tokenizer.Decode(out)
	if err != nil {
		return "", fmt.Errorf("failed to decode question: %w", err)
	}
	qs.trace.LogModelResponse("QuestionSynthesizer", decoded)
	return TrimToQuestion(decoded), nil
}

// GenerateAll synthesizes one question per input. The first failure aborts
// the batch and no partial result is returned.
func (qs *QuestionSynthesizer) GenerateAll(ctx context.Context, inputs []GenerationInput) ([]GeneratedQuestion, error) {
	ctx, span := startSpan(ctx, "synthesizer.generate_all", attribute.Int("inputs", len(inputs)))
	questions := make([]GeneratedQuestion, 0, len(inputs))
	for i, in := range inputs {
		q, err := qs.Generate(ctx, in)
		if err != nil {
			err = fmt.Errorf("candidate %d: %w", i, err)
			endSpan(span, err)
			return nil, err
		}
		questions = append(questions, GeneratedQuestion{Question: q, Span: in.Span, Style: in.Style})
	}
	endSpan(span, nil)
	return questions, nil
}
