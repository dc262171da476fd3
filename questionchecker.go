package examgen

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClassifier is a Classifier that asks a chat model how well an answer
// fits a question. It returns [1-p, p] where p is the reported probability.
type OpenAIClassifier struct {
	backend *openAIBackend
}

func NewOpenAIClassifier(cfg OpenAIConfig, trace *ModelTrace) (*OpenAIClassifier, error) {
	backend, err := newOpenAIBackend(cfg, "openai classifier")
	if err != nil {
		return nil, err
	}
	backend.trace = trace
	return &OpenAIClassifier{backend: backend}, nil
}

var scorePairTool = openai.FunctionDefinition{
	Name:        "score_pair",
	Description: "Report how likely it is that the answer correctly and fully answers the question",
	Parameters: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"probability": map[string]interface{}{
				"type":        "number",
				"minimum":     0,
				"maximum":     1,
				"description": "Probability that the pair is a good question/answer pair",
			},
			"reason": map[string]interface{}{
				"type":        "string",
				"description": "Short justification",
			},
		},
		"required": []string{"probability"},
	},
}

func (c *OpenAIClassifier) Classify(ctx context.Context, question, answer string) ([]float64, error) {
	var args struct {
		Probability float64 `json:"probability"`
		Reason      string  `json:"reason"`
	}
	err := c.backend.callTool(ctx, "QAEvaluator",
		"You are an exam reviewer. Judge whether an answer matches its question.",
		c.buildPrompt(question, answer), scorePairTool, &args)
	if err != nil {
		return nil, fmt.Errorf("failed to classify pair: %w", err)
	}

	p := args.Probability
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	VerboseLog("Scored pair %.3f: %s", p, args.Reason)
	return []float64{1 - p, p}, nil
}

func (c *OpenAIClassifier) buildPrompt(question, answer string) string {
	var sb strings.Builder
	sb.WriteString("Evaluate the following question and answer:\n\n")
	sb.WriteString(fmt.Sprintf("Question: %s\n", question))
	sb.WriteString(fmt.Sprintf("Answer: %s\n\n", answer))
	sb.WriteString("Criteria:\n")
	sb.WriteString("1. The question is grammatical and unambiguous.\n")
	sb.WriteString("2. The answer actually answers the question.\n")
	sb.WriteString("3. The question does not give the answer away.\n")
	sb.WriteString("Use the score_pair tool to report your judgement.")
	return sb.String()
}
