package examgen

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var difficultyLevels = []string{"easy", "medium", "hard"}

// OpenAIDifficultyRater labels questions with a difficulty level
type OpenAIDifficultyRater struct {
	backend *openAIBackend
}

func NewOpenAIDifficultyRater(cfg OpenAIConfig, trace *ModelTrace) (*OpenAIDifficultyRater, error) {
	backend, err := newOpenAIBackend(cfg, "openai difficulty rater")
	if err != nil {
		return nil, err
	}
	backend.trace = trace
	return &OpenAIDifficultyRater{backend: backend}, nil
}

var rateDifficultyTool = openai.FunctionDefinition{
	Name:        "rate_difficulty",
	Description: "Rate how hard the question is for a student who studied the material",
	Parameters: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"difficulty": map[string]interface{}{
				"type": "string",
				"enum": difficultyLevels,
			},
			"reason": map[string]interface{}{
				"type":        "string",
				"description": "Explanation for the rating",
			},
		},
		"required": []string{"difficulty"},
	},
}

func (r *OpenAIDifficultyRater) RateDifficulty(ctx context.Context, question, answer string) (string, error) {
	var args struct {
		Difficulty string `json:"difficulty"`
		Reason     string `json:"reason"`
	}
	prompt := fmt.Sprintf("Question: %s\nAnswer: %s\n\nUse the rate_difficulty tool.", question, answer)
	err := r.backend.callTool(ctx, "DifficultyRater",
		"You are an experienced educator rating exam question difficulty.",
		prompt, rateDifficultyTool, &args)
	if err != nil {
		return "", fmt.Errorf("failed to rate difficulty: %w", err)
	}

	level := strings.ToLower(strings.TrimSpace(args.Difficulty))
	for _, l := range difficultyLevels {
		if l == level {
			return level, nil
		}
	}
	return "", fmt.Errorf("unexpected difficulty %q", args.Difficulty)
}
