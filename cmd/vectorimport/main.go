package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"examgen"
)

func main() {
	var (
		vectorsFile = flag.String("vectors", "", "GloVe-format text file: one word and its values per line (required)")
		dbPath      = flag.String("db", "vectors.db", "SQLite database to import into")
		limit       = flag.Int("limit", 0, "Import at most this many words (0 for all)")
		verbose     = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	logger, err := examgen.NewLogger(examgen.LogOptions{Verbose: *verbose})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	examgen.SetLogger(logger)

	if *vectorsFile == "" {
		logger.Fatal("Vectors file is required. Use -vectors flag.")
	}

	store, err := examgen.OpenEmbeddingStore(*dbPath)
	if err != nil {
		logger.Fatal("Failed to open database", "error", err)
	}
	defer store.Close()

	if err := store.CreateTables(); err != nil {
		logger.Fatal("Failed to create tables", "error", err)
	}

	f, err := os.Open(*vectorsFile)
	if err != nil {
		logger.Fatal("Failed to open vectors file", "error", err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
	defer cancel()

	start := time.Now()
	n, err := store.ImportGloVe(ctx, *vectorsFile, f, *limit)
	if err != nil {
		logger.Fatal("Import failed", "error", err)
	}

	total, err := store.Count()
	if err != nil {
		logger.Fatal("Failed to count vectors", "error", err)
	}
	logger.Info("Import complete", "imported", n, "total", total, "elapsed", time.Since(start).String())
}
