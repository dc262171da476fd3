package examgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiModel is a GenerativeModel backed by the Gemini API. Like
// OpenAIModel it converts token ids to text and back with a Tokenizer.
// The client lives until Close.
type GeminiModel struct {
	Model     string
	client    *genai.Client
	tokenizer Tokenizer
	trace     *ModelTrace
}

// NewGeminiModel connects once; a failed connection is reported here
// rather than on the first Generate.
func NewGeminiModel(ctx context.Context, apiKey, model string, tok Tokenizer, trace *ModelTrace) (*GeminiModel, error) {
	if apiKey == "" || tok == nil {
		return nil, fmt.Errorf("gemini model: %w", ErrModelUnavailable)
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %v: %w", err, ErrModelUnavailable)
	}
	return &GeminiModel{Model: model, client: cl, tokenizer: tok, trace: trace}, nil
}

func (g *GeminiModel) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *GeminiModel) Generate(ctx context.Context, input []int, opts GenerateOptions) ([]int, error) {
	prompt, err := g.tokenizer.Decode(input)
	if err != nil {
		return nil, fmt.Errorf("failed to decode prompt: %w", err)
	}

	m := g.client.GenerativeModel(g.Model)
	m.GenerationConfig = genai.GenerationConfig{
		CandidateCount:  ptrInt32(1),
		MaxOutputTokens: ptrInt32(int32(opts.MaxLength)),
	}
	if !opts.Sample {
		m.GenerationConfig.Temperature = ptrFloat32(0)
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(questionMakerPrompt)},
	}

	g.trace.LogModelRequest("GeminiModel", prompt)
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	text := strings.TrimSpace(firstText(resp))
	if text == "" {
		return nil, fmt.Errorf("empty response from %s", g.Model)
	}
	g.trace.LogModelResponse("GeminiModel", text)

	ids, err := g.tokenizer.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion: %w", err)
	}
	return ids, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
func ptrInt32(v int32) *int32       { return &v }
