package examgen

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// OpenAIConfig configures the OpenAI-backed adapters
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // optional, for compatible endpoints
	Model   string
	RPS     float64 // requests per second; <= 0 disables limiting
	Burst   int
}

// openAIBackend is the client shared by the OpenAI adapters
type openAIBackend struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
	trace   *ModelTrace
}

func newOpenAIBackend(cfg OpenAIConfig, component string) (*openAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: missing OpenAI API key: %w", component, ErrModelUnavailable)
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	return &openAIBackend{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		limiter: limiter,
	}, nil
}

func (b *openAIBackend) complete(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return openai.ChatCompletionResponse{}, fmt.Errorf("rate limiter: %w", err)
	}
	req.Model = b.model
	return b.client.CreateChatCompletion(ctx, req)
}

// callTool forces a single function call and decodes its arguments into out
func (b *openAIBackend) callTool(ctx context.Context, component, system, prompt string, fn openai.FunctionDefinition, out interface{}) error {
	b.trace.LogModelRequest(component, prompt)

	resp, err := b.complete(ctx, openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Tools: []openai.Tool{{Type: openai.ToolTypeFunction, Function: &fn}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: fn.Name},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", fn.Name, err)
	}

	if len(resp.Choices) == 0 {
		return fmt.Errorf("no response from %s", b.model)
	}
	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) == 0 {
		return fmt.Errorf("no tool calls in response")
	}
	toolCall := choice.Message.ToolCalls[0]
	if toolCall.Function.Name != fn.Name {
		return fmt.Errorf("unexpected tool call: %s", toolCall.Function.Name)
	}
	b.trace.LogModelResponse(component, toolCall.Function.Arguments)

	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), out); err != nil {
		return fmt.Errorf("failed to parse tool arguments: %w", err)
	}
	return nil
}
