package examgen

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// EmbeddingStore persists word vectors in SQLite
type EmbeddingStore struct {
	db *sql.DB
}

// OpenEmbeddingStore opens a new database connection
func OpenEmbeddingStore(dbPath string) (*EmbeddingStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &EmbeddingStore{db: db}, nil
}

// Close closes the database connection
func (s *EmbeddingStore) Close() error {
	return s.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (s *EmbeddingStore) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS vectors (
			word TEXT PRIMARY KEY,
			dims INTEGER NOT NULL,
			vector TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS imports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			words INTEGER NOT NULL,
			imported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// PutVector inserts or replaces the vector of a word
func (s *EmbeddingStore) PutVector(word string, vec []float32) error {
	return putVector(s.db, word, vec)
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func putVector(db execer, word string, vec []float32) error {
	encoded, err := VectorToJSON(vec)
	if err != nil {
		return err
	}
	_, err = db.Exec(
		"INSERT OR REPLACE INTO vectors (word, dims, vector) VALUES (?, ?, ?)",
		strings.ToLower(word), len(vec), encoded,
	)
	if err != nil {
		return fmt.Errorf("failed to store vector for %q: %w", word, err)
	}
	return nil
}

// GetVector retrieves the vector of a word
func (s *EmbeddingStore) GetVector(word string) ([]float32, error) {
	var encoded string
	err := s.db.QueryRow("SELECT vector FROM vectors WHERE word = ?", strings.ToLower(word)).Scan(&encoded)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%q: %w", word, ErrOutOfVocabulary)
		}
		return nil, fmt.Errorf("failed to get vector: %w", err)
	}
	return JSONToVector(encoded)
}

// Count returns the number of stored words
func (s *EmbeddingStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM vectors").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count vectors: %w", err)
	}
	return n, nil
}

// ImportGloVe reads "word v1 v2 ..." lines and stores them in one
// transaction. limit > 0 stops after that many words.
func (s *EmbeddingStore) ImportGloVe(ctx context.Context, source string, r io.Reader, limit int) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	count := 0
	line := 0
	for scanner.Scan() {
		line++
		if limit > 0 && count >= limit {
			break
		}
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			VerboseLog("Imported %d vectors", count)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		vec := make([]float32, len(fields)-1)
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return 0, fmt.Errorf("line %d: invalid value %q: %w", line, f, err)
			}
			vec[i] = float32(v)
		}
		if err := putVector(tx, fields[0], vec); err != nil {
			return 0, err
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read vectors: %w", err)
	}

	if _, err := tx.Exec("INSERT INTO imports (source, words) VALUES (?, ?)", source, count); err != nil {
		return 0, fmt.Errorf("failed to record import: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return count, nil
}

// LoadIndex reads every stored vector into an in-memory index
func (s *EmbeddingStore) LoadIndex(ctx context.Context) (*VectorIndex, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT word, vector FROM vectors ORDER BY word")
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	defer rows.Close()

	index := NewVectorIndex()
	for rows.Next() {
		var word, encoded string
		if err := rows.Scan(&word, &encoded); err != nil {
			return nil, fmt.Errorf("failed to scan vector: %w", err)
		}
		vec, err := JSONToVector(encoded)
		if err != nil {
			return nil, err
		}
		if err := index.Add(word, vec); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vectors: %w", err)
	}
	return index, nil
}

// VectorToJSON converts a vector to its stored JSON form
func VectorToJSON(vec []float32) (string, error) {
	data, err := json.Marshal(vec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal vector: %w", err)
	}
	return string(data), nil
}

// JSONToVector converts a stored JSON vector back to a slice
func JSONToVector(encoded string) ([]float32, error) {
	var vec []float32
	if err := json.Unmarshal([]byte(encoded), &vec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vector: %w", err)
	}
	return vec, nil
}
