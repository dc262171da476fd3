package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"examgen"
)

func main() {
	var (
		configDir    = flag.String("config", ".", "Directory containing config.yaml")
		inputFile    = flag.String("input", "", "Text file to generate questions from (default: stdin)")
		mode         = flag.String("mode", "subjective", "Flow to run: subjective or objective")
		style        = flag.String("style", "", "Answer style for the subjective flow: sentences, multiple_choice or all")
		numQuestions = flag.Int("questions", 0, "Number of questions to return (0 uses the configured default)")
		numOptions   = flag.Int("options", 0, "Options per multiple choice question (0 uses the configured default)")
		noEvaluator  = flag.Bool("no-evaluator", false, "Keep generation order instead of ranking")
		outputFile   = flag.String("output", "", "Output file for question JSON (default: stdout)")
		playMode     = flag.Bool("play", false, "Play the generated questions interactively")
		numPlayers   = flag.Int("players", 1, "Number of players for play mode")
		seed         = flag.Uint64("seed", 0, "Random seed for option placement (0 is unseeded)")
		traceSpans   = flag.Bool("trace", false, "Print pipeline spans to stderr")
		verbose      = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	cfg, err := examgen.LoadConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *numQuestions > 0 {
		cfg.Pipeline.NumQuestions = *numQuestions
	}
	if *numOptions > 0 {
		cfg.Pipeline.NumOptions = *numOptions
	}
	if *style != "" {
		cfg.Pipeline.AnswerStyle = *style
	}
	if *noEvaluator {
		cfg.Pipeline.UseEvaluator = false
	}

	logger, err := examgen.NewLogger(examgen.LogOptions{
		Mode:    cfg.Log.Mode,
		File:    cfg.Log.File,
		Verbose: cfg.Log.Verbose || *verbose,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	examgen.SetLogger(logger)

	if *traceSpans {
		shutdown, err := examgen.InitStdoutTracing(os.Stderr)
		if err != nil {
			logger.Fatal("Failed to initialize tracing", "error", err)
		}
		defer shutdown(context.Background())
	}

	article, err := readInput(*inputFile)
	if err != nil {
		logger.Fatal("Failed to read input", "error", err)
	}

	metrics := examgen.NewMetrics()
	var rng examgen.Rand
	if *seed != 0 {
		rng = examgen.NewRand(*seed)
	}

	runID := fmt.Sprintf("%s-%d", *mode, time.Now().Unix())
	trace, err := examgen.NewModelTrace(cfg.Pipeline.TraceDir, runID, map[string]interface{}{
		"mode":          *mode,
		"style":         cfg.Pipeline.AnswerStyle,
		"num_questions": cfg.Pipeline.NumQuestions,
		"input_chars":   len(article),
	})
	if err != nil {
		logger.Warn("Model trace disabled", "error", err)
	}
	defer trace.Close()

	// Generate with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var records []examgen.QuestionRecord
	switch *mode {
	case "subjective":
		records, err = runSubjective(ctx, cfg, article, rng, logger, metrics, trace)
	case "objective":
		records, err = runObjective(ctx, cfg, article, rng, logger, metrics)
	default:
		logger.Fatal("Unknown mode", "mode", *mode)
	}
	if err != nil {
		logger.Fatal("Failed to generate questions", "error", err)
	}

	if cfg.Metrics.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.Warn("Failed to write metrics", "error", err)
		}
	}

	if *playMode {
		playQuiz(records, *numPlayers)
		return
	}

	// Output the questions
	output, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		logger.Fatal("Failed to marshal questions", "error", err)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, output, 0644); err != nil {
			logger.Fatal("Failed to write output file", "error", err)
		}
		logger.Info("Questions saved", "path", *outputFile, "count", len(records))
	} else {
		fmt.Println(string(output))
	}
}

func readInput(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func runSubjective(ctx context.Context, cfg *examgen.Config, article string, rng examgen.Rand, logger *examgen.Logger, metrics *examgen.Metrics, trace *examgen.ModelTrace) ([]examgen.QuestionRecord, error) {
	style, err := examgen.ParseAnswerStyle(cfg.Pipeline.AnswerStyle)
	if err != nil {
		return nil, err
	}

	tok, err := examgen.NewTiktokenTokenizer(cfg.Generator.Tokenizer)
	if err != nil {
		return nil, err
	}

	var model examgen.GenerativeModel
	switch cfg.Generator.Provider {
	case "gemini":
		var gm *examgen.GeminiModel
		gm, err = examgen.NewGeminiModel(ctx, cfg.Generator.GeminiKey, cfg.Generator.Model, tok, trace)
		if err == nil {
			defer gm.Close()
			model = gm
		}
	default:
		model, err = examgen.NewOpenAIModel(cfg.OpenAI(""), tok, trace)
	}
	if err != nil {
		return nil, err
	}

	deps := examgen.GeneratorDeps{
		Tokenizer:  tok,
		Model:      model,
		Recognizer: examgen.NewProseRecognizer(),
		Splitter:   examgen.NewProseRecognizer(),
		Rand:       rng,
		Logger:     logger,
		Metrics:    metrics,
		Trace:      trace,
		MaxTokens:  cfg.Pipeline.MaxTokens,
		NumOptions: cfg.Pipeline.NumOptions,

		MinSentenceTokens: cfg.Pipeline.MinSentenceTokens,
	}
	if cfg.Pipeline.Distractors == "embedding" && style != examgen.StyleSentences {
		distractors := examgen.NewDistractorGenerator(loadIndex(ctx, cfg, logger), rng, logger, metrics)
		deps.Distractor = func(doc string, _ []examgen.AnswerSpan) examgen.DistractorStrategy {
			return distractors.ForDocument(doc)
		}
	}

	if cfg.Evaluator.Enabled {
		classifier, err := examgen.NewOpenAIClassifier(cfg.OpenAI(cfg.Evaluator.Model), trace)
		if err != nil {
			logger.Warn("Evaluator unavailable", "error", err)
		} else {
			deps.Classifier = classifier
		}
	}
	if cfg.Generator.Difficulty {
		rater, err := examgen.NewOpenAIDifficultyRater(cfg.OpenAI(cfg.Evaluator.Model), trace)
		if err != nil {
			logger.Warn("Difficulty rating unavailable", "error", err)
		} else {
			deps.Rater = rater
		}
	}

	generator, err := examgen.NewQuestionGenerator(deps)
	if err != nil {
		return nil, err
	}
	return generator.Generate(ctx, article, cfg.Pipeline.UseEvaluator, cfg.Pipeline.NumQuestions, style)
}

// loadIndex returns nil when no embeddings are available, which makes the
// distractor generator use document words only.
func loadIndex(ctx context.Context, cfg *examgen.Config, logger *examgen.Logger) examgen.EmbeddingIndex {
	store, err := examgen.OpenEmbeddingStore(cfg.Embeddings.Path)
	if err != nil {
		logger.Warn("Embedding store unavailable, using document words only", "error", err)
		return nil
	}
	defer store.Close()
	vi, err := store.LoadIndex(ctx)
	if err != nil {
		logger.Warn("Failed to load embeddings, using document words only", "error", err)
		return nil
	}
	logger.Info("Embeddings loaded", "words", vi.Len())
	return vi
}

func runObjective(ctx context.Context, cfg *examgen.Config, article string, rng examgen.Rand, logger *examgen.Logger, metrics *examgen.Metrics) ([]examgen.QuestionRecord, error) {
	index := loadIndex(ctx, cfg, logger)

	recognizer := examgen.NewProseRecognizer()
	generator := examgen.NewObjectiveGenerator(
		examgen.NewEntityClozeSelector(recognizer, recognizer),
		examgen.NewDistractorGenerator(index, rng, logger, metrics),
		recognizer,
		cfg.Pipeline.NumQuestions,
		cfg.Pipeline.NumOptions,
		logger,
		metrics,
	)

	dict, err := generator.GenerateQuestionsDict(ctx, article)
	if err != nil {
		return nil, err
	}
	keys := make([]int, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	records := make([]examgen.QuestionRecord, 0, len(keys))
	for _, k := range keys {
		records = append(records, dict[k].Record())
	}
	return records, nil
}
