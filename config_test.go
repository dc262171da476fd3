package examgen

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Pipeline.MaxTokens != MaxTokens || cfg.Pipeline.NumQuestions != DefaultNumQuestions || cfg.Pipeline.NumOptions != DefaultNumOptions {
		t.Fatalf("unexpected pipeline defaults %+v", cfg.Pipeline)
	}
	if cfg.Generator.Provider != "openai" || cfg.Pipeline.AnswerStyle != string(StyleAll) || cfg.Pipeline.MinSentenceTokens != 0 || cfg.Pipeline.Distractors != "entity" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `generator:
  provider: gemini
  model: gemini-1.5-pro
pipeline:
  num_questions: 3
  num_options: 5
  answer_style: sentences
  min_sentence_tokens: 5
  distractors: embedding
rate_limit:
  rps: 0.5
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GEMINI_API_KEY", "gem-key")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Generator.Provider != "gemini" || cfg.Generator.GeminiKey != "gem-key" {
		t.Fatalf("unexpected generator config %+v", cfg.Generator)
	}
	if cfg.Pipeline.NumQuestions != 3 || cfg.Pipeline.NumOptions != 5 || cfg.Pipeline.AnswerStyle != "sentences" || cfg.Pipeline.MinSentenceTokens != 5 || cfg.Pipeline.Distractors != "embedding" {
		t.Fatalf("unexpected pipeline config %+v", cfg.Pipeline)
	}
	if cfg.RateLimit.RPS != 0.5 {
		t.Fatalf("unexpected rate limit %+v", cfg.RateLimit)
	}
	if got := cfg.OpenAI("").Model; got != "" {
		t.Fatalf("gemini model should not leak into openai config, got %q", got)
	}
}

func TestLoadConfigRejectsInvalidStyle(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("pipeline:\n  answer_style: essay\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(dir); !errors.Is(err, ErrInvalidAnswerStyle) {
		t.Fatalf("expected ErrInvalidAnswerStyle, got %v", err)
	}
}

func TestLoadConfigRejectsUnknownDistractors(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("pipeline:\n  distractors: random\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(dir); err == nil || !strings.Contains(err.Error(), "distractor") {
		t.Fatalf("expected distractor strategy error, got %v", err)
	}
}

func TestAnswerJSON(t *testing.T) {
	records := []QuestionRecord{
		{ID: "1", Question: "q1?", Answer: Answer{Text: "plain"}, Style: StyleSentences},
		{ID: "2", Question: "q2?", Answer: Answer{Options: []Option{{Text: "a"}, {Text: "b", Correct: true}}}, Style: StyleMultipleChoice},
	}
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"answer":"plain"`) || !strings.Contains(s, `"answer":[{"answer":"a","correct":false},{"answer":"b","correct":true}]`) {
		t.Fatalf("unexpected JSON %s", s)
	}

	var back []QuestionRecord
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back[0].Answer.Text != "plain" || back[1].Answer.CorrectText() != "b" {
		t.Fatalf("unexpected decoded records %+v", back)
	}
}

func TestModelTraceWritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	trace, err := NewModelTrace(dir, "run1", map[string]interface{}{"style": "all"})
	if err != nil {
		t.Fatalf("NewModelTrace: %v", err)
	}
	trace.LogModelRequest("QuestionSynthesizer", "<answer> a <context> b")
	trace.LogCandidateResult("c0001", "kept", "what is a?")
	if err := trace.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	trace.LogModelResponse("late", "ignored")

	data, err := os.ReadFile(filepath.Join(dir, "run1.log"))
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 trace lines, got %d: %s", len(lines), data)
	}
	for _, line := range lines {
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		if entry["run_id"] != "run1" {
			t.Fatalf("missing run id in %q", line)
		}
	}

	var nilTrace *ModelTrace
	nilTrace.LogModelRequest("x", "y")
	if err := nilTrace.Close(); err != nil {
		t.Fatalf("nil trace Close: %v", err)
	}
}

func TestMetricsTextfile(t *testing.T) {
	m := NewMetrics()
	m.QuestionsGenerated(StyleSentences, 2)
	m.DistractorFallback()
	path := filepath.Join(t.TempDir(), "examgen.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(string(data), `examgen_questions_generated_total{style="sentences"} 2`) {
		t.Fatalf("missing counter in %s", data)
	}
}
