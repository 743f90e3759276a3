package quantummeadow

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Generation outcomes
const (
	OutcomeGenerated = "generated"
	OutcomeFallback  = "fallback"
)

// Failure causes recorded for fallback outcomes
const (
	CauseMissingCredential = "missing_credential"
	CauseService           = "service"
	CauseInvalidFormat     = "invalid_format"
)

// GenerationRecord is one row of fetch history. It holds no player data.
type GenerationRecord struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Model         string    `json:"model"`
	Outcome       string    `json:"outcome"`
	Cause         string    `json:"cause,omitempty"`
	QuestionCount int       `json:"question_count"`
	Error         string    `json:"error,omitempty"`
}

// DB is the generation history database
type DB struct {
	db *sql.DB
}

// OpenDB opens a new database connection
func OpenDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: db}, nil
}

// CloseDB closes the database connection
func (db *DB) CloseDB() error {
	return db.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (db *DB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS generations (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL,
			model TEXT NOT NULL,
			outcome TEXT NOT NULL,
			cause TEXT,
			question_count INTEGER NOT NULL,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS generations_started_at ON generations(started_at)`,
	}

	for _, query := range queries {
		if _, err := db.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// RecordGeneration stores the outcome of one fetch
func (db *DB) RecordGeneration(ctx context.Context, rec GenerationRecord) error {
	_, err := db.db.ExecContext(ctx,
		"INSERT INTO generations (id, started_at, finished_at, model, outcome, cause, question_count, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.StartedAt, rec.FinishedAt, rec.Model, rec.Outcome, rec.Cause, rec.QuestionCount, rec.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}
	return nil
}

// GetGenerations returns the most recent generations first, optionally limited by count
func (db *DB) GetGenerations(ctx context.Context, limit int) ([]GenerationRecord, error) {
	query := "SELECT id, started_at, finished_at, model, outcome, cause, question_count, error FROM generations ORDER BY started_at DESC"
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get generations: %w", err)
	}
	defer rows.Close()

	var records []GenerationRecord
	for rows.Next() {
		var rec GenerationRecord
		var cause, errText sql.NullString
		err := rows.Scan(&rec.ID, &rec.StartedAt, &rec.FinishedAt, &rec.Model, &rec.Outcome, &cause, &rec.QuestionCount, &errText)
		if err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		rec.Cause = cause.String
		rec.Error = errText.String
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating generations: %w", err)
	}

	return records, nil
}

// CountOutcomes returns how many generations ended with each outcome
func (db *DB) CountOutcomes(ctx context.Context) (map[string]int, error) {
	rows, err := db.db.QueryContext(ctx, "SELECT outcome, COUNT(*) FROM generations GROUP BY outcome")
	if err != nil {
		return nil, fmt.Errorf("failed to count outcomes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("failed to scan outcome count: %w", err)
		}
		counts[outcome] = n
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outcome counts: %w", err)
	}
	return counts, nil
}
