package examgen

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const questionMakerPrompt = `You write exam questions. The input contains an answer after the <answer> marker and a passage after the <context> marker.
Write exactly one question, answerable from the passage, whose answer is the given answer. Reply with the question only.`

// OpenAIModel is a GenerativeModel backed by a chat completion endpoint.
// Token ids are decoded with the supplied tokenizer before the request and
// the reply is encoded with it again. The chat API has no beam search, so
// decoding is approximated with temperature 0 unless sampling is requested.
type OpenAIModel struct {
	backend   *openAIBackend
	tokenizer Tokenizer
}

// NewOpenAIModel fails with ErrModelUnavailable without an API key or tokenizer
func NewOpenAIModel(cfg OpenAIConfig, tok Tokenizer, trace *ModelTrace) (*OpenAIModel, error) {
	if tok == nil {
		return nil, fmt.Errorf("openai model: missing tokenizer: %w", ErrModelUnavailable)
	}
	backend, err := newOpenAIBackend(cfg, "openai model")
	if err != nil {
		return nil, err
	}
	backend.trace = trace
	return &OpenAIModel{backend: backend, tokenizer: tok}, nil
}

func (m *OpenAIModel) Generate(ctx context.Context, input []int, opts GenerateOptions) ([]int, error) {
	prompt, err := m.tokenizer.Decode(input)
	if err != nil {
		return nil, fmt.Errorf("failed to decode prompt: %w", err)
	}

	req := openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: questionMakerPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens: opts.MaxLength,
		N:         1,
	}
	if !opts.Sample {
		req.Temperature = 0
		req.Seed = new(int)
	}

	VerboseLog("Requesting question from %s", m.backend.model)
	resp, err := m.backend.complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", m.backend.model)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	ids, err := m.tokenizer.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion: %w", err)
	}
	if opts.MaxLength > 0 && len(ids) > opts.MaxLength {
		ids = ids[:opts.MaxLength]
	}
	return ids, nil
}
