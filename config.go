package examgen

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Generator  GeneratorConfig  `mapstructure:"generator"`
	Evaluator  EvaluatorConfig  `mapstructure:"evaluator"`
	Embeddings EmbeddingsConfig `mapstructure:"embeddings"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
}

type GeneratorConfig struct {
	Provider   string `mapstructure:"provider"` // openai or gemini
	Model      string `mapstructure:"model"`
	OpenAIKey  string `mapstructure:"openai_api_key"`
	OpenAIURL  string `mapstructure:"openai_base_url"`
	GeminiKey  string `mapstructure:"gemini_api_key"`
	Tokenizer  string `mapstructure:"tokenizer"`
	Difficulty bool   `mapstructure:"rate_difficulty"`
}

type EvaluatorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

type EmbeddingsConfig struct {
	Path string `mapstructure:"path"`
}

type PipelineConfig struct {
	MaxTokens         int    `mapstructure:"max_tokens"`
	NumQuestions      int    `mapstructure:"num_questions"`
	NumOptions        int    `mapstructure:"num_options"`
	AnswerStyle       string `mapstructure:"answer_style"`
	UseEvaluator      bool   `mapstructure:"use_evaluator"`
	MinSentenceTokens int    `mapstructure:"min_sentence_tokens"` // 0 keeps every sentence
	Distractors       string `mapstructure:"distractors"`         // entity or embedding
	TraceDir          string `mapstructure:"trace_dir"`
}

type LogConfig struct {
	Mode    string `mapstructure:"mode"`
	File    string `mapstructure:"file"`
	Verbose bool   `mapstructure:"verbose"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("generator.provider", "openai")
	v.SetDefault("generator.model", "")
	v.SetDefault("generator.tokenizer", "cl100k_base")
	v.SetDefault("generator.rate_difficulty", false)
	v.SetDefault("evaluator.enabled", true)
	v.SetDefault("embeddings.path", "vectors.db")
	v.SetDefault("pipeline.max_tokens", MaxTokens)
	v.SetDefault("pipeline.num_questions", DefaultNumQuestions)
	v.SetDefault("pipeline.num_options", DefaultNumOptions)
	v.SetDefault("pipeline.answer_style", string(StyleAll))
	v.SetDefault("pipeline.use_evaluator", true)
	v.SetDefault("pipeline.min_sentence_tokens", 0)
	v.SetDefault("pipeline.distractors", "entity")
	v.SetDefault("pipeline.trace_dir", "log")
	v.SetDefault("log.mode", "dev")
	v.SetDefault("rate_limit.rps", 2)
	v.SetDefault("rate_limit.burst", 1)
}

// LoadConfig reads config.yaml from path (if present), a .env file and
// EXAMGEN_* environment variables. A missing config file is not an error.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("EXAMGEN")
	v.AutomaticEnv()
	setDefaults(v)

	v.BindEnv("generator.openai_api_key", "OPENAI_API_KEY")
	v.BindEnv("generator.openai_base_url", "OPENAI_BASE_URL")
	v.BindEnv("generator.gemini_api_key", "GEMINI_API_KEY")
	v.BindEnv("generator.provider", "EXAMGEN_PROVIDER")
	v.BindEnv("embeddings.path", "EXAMGEN_EMBEDDINGS")
	v.BindEnv("log.verbose", "EXAMGEN_VERBOSE")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Generator.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("invalid generator provider %q", c.Generator.Provider)
	}
	if _, err := ParseAnswerStyle(c.Pipeline.AnswerStyle); err != nil {
		return err
	}
	if c.Pipeline.NumOptions < 2 {
		return fmt.Errorf("%w: got %d", ErrInvalidOptionCount, c.Pipeline.NumOptions)
	}
	switch c.Pipeline.Distractors {
	case "entity", "embedding":
	default:
		return fmt.Errorf("invalid distractor strategy %q", c.Pipeline.Distractors)
	}
	if c.Pipeline.MinSentenceTokens < 0 {
		return fmt.Errorf("min_sentence_tokens must not be negative, got %d", c.Pipeline.MinSentenceTokens)
	}
	if c.Pipeline.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.Pipeline.MaxTokens)
	}
	return nil
}

// OpenAI returns the adapter config for the given model override. Without
// an override the generator model is used when the provider is openai.
func (c *Config) OpenAI(model string) OpenAIConfig {
	if model == "" && c.Generator.Provider == "openai" {
		model = c.Generator.Model
	}
	return OpenAIConfig{
		APIKey:  c.Generator.OpenAIKey,
		BaseURL: c.Generator.OpenAIURL,
		Model:   model,
		RPS:     c.RateLimit.RPS,
		Burst:   c.RateLimit.Burst,
	}
}
