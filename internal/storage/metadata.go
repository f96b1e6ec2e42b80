package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/codebuildervaibhav/speech-insights/internal/analytics"
)

// ErrNotFound is returned when no transcript exists for a job ID.
var ErrNotFound = errors.New("transcript not found")

// TranscriptRecord is one row of the transcripts table.
type TranscriptRecord struct {
	JobID        string    `json:"job_id"`
	RequestName  string    `json:"request_name"`
	SourceType   string    `json:"source_type"`
	GDriveURL    string    `json:"gdrive_url"`
	LocalPath    string    `json:"local_path"`
	CreatedAt    time.Time `json:"created_at"`
	Duration     float64   `json:"duration"`
	WordCount    int       `json:"word_count"`
	OverallWpm   int       `json:"overall_wpm"`
	FluencyScore int       `json:"fluency_score"`

	metricsJSON string
}

// MetadataDB handles SQLite database operations
type MetadataDB struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS transcripts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id TEXT NOT NULL UNIQUE,
	request_name TEXT NOT NULL,
	source_type TEXT NOT NULL,
	gdrive_url TEXT NOT NULL DEFAULT '',
	local_path TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	duration REAL NOT NULL DEFAULT 0,
	word_count INTEGER NOT NULL DEFAULT 0,
	overall_wpm INTEGER NOT NULL DEFAULT 0,
	fluency_score INTEGER NOT NULL DEFAULT 0,
	metrics_json TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_created_at ON transcripts(created_at);
CREATE INDEX IF NOT EXISTS idx_request_name ON transcripts(request_name);
`

const selectColumns = `job_id, request_name, source_type, gdrive_url, local_path, created_at,
	duration, word_count, overall_wpm, fluency_score, metrics_json`

// NewMetadataDB opens (or creates) the SQLite database at dbPath.
func NewMetadataDB(dbPath string) (*MetadataDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serialises writers; one connection avoids SQLITE_BUSY under the worker pool
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MetadataDB{db: db}, nil
}

// NewTranscriptRecord builds a record from a finished job. The metrics, when
// present, are stored as JSON alongside the headline numbers.
func NewTranscriptRecord(jobID, requestName, sourceType string, duration float64, metrics *analytics.DeliveryMetrics) (TranscriptRecord, error) {
	rec := TranscriptRecord{
		JobID:       jobID,
		RequestName: requestName,
		SourceType:  sourceType,
		CreatedAt:   time.Now().UTC(),
		Duration:    duration,
	}
	if metrics == nil {
		return rec, nil
	}

	data, err := json.Marshal(metrics)
	if err != nil {
		return rec, fmt.Errorf("failed to marshal metrics: %w", err)
	}
	rec.WordCount = metrics.WordCount
	rec.OverallWpm = metrics.OverallWpm
	rec.FluencyScore = metrics.FluencyScore
	rec.metricsJSON = string(data)
	return rec, nil
}

// SaveTranscript inserts a transcript record.
func (mdb *MetadataDB) SaveTranscript(ctx context.Context, rec TranscriptRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO transcripts (job_id, request_name, source_type, gdrive_url, local_path, created_at,
		duration, word_count, overall_wpm, fluency_score, metrics_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := mdb.db.ExecContext(ctx, query, rec.JobID, rec.RequestName, rec.SourceType, rec.GDriveURL,
		rec.LocalPath, rec.CreatedAt, rec.Duration, rec.WordCount, rec.OverallWpm, rec.FluencyScore,
		rec.metricsJSON)
	if err != nil {
		return fmt.Errorf("failed to save transcript metadata: %w", err)
	}
	return nil
}

// GetTranscript retrieves transcript metadata by job ID
func (mdb *MetadataDB) GetTranscript(ctx context.Context, jobID string) (*TranscriptRecord, error) {
	row := mdb.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM transcripts WHERE job_id = ?`, jobID)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", jobID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}
	return rec, nil
}

// GetMetrics returns the delivery metrics stored for a job. A transcript
// saved without metrics yields (nil, nil).
func (mdb *MetadataDB) GetMetrics(ctx context.Context, jobID string) (*analytics.DeliveryMetrics, error) {
	rec, err := mdb.GetTranscript(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if rec.metricsJSON == "" {
		return nil, nil
	}

	var m analytics.DeliveryMetrics
	if err := json.Unmarshal([]byte(rec.metricsJSON), &m); err != nil {
		return nil, fmt.Errorf("failed to decode metrics for job %s: %w", jobID, err)
	}
	return &m, nil
}

// ListTranscripts returns the most recent transcripts, newest first.
func (mdb *MetadataDB) ListTranscripts(ctx context.Context, limit int) ([]TranscriptRecord, error) {
	rows, err := mdb.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM transcripts ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	defer rows.Close()

	transcripts := []TranscriptRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transcript: %w", err)
		}
		transcripts = append(transcripts, *rec)
	}
	return transcripts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*TranscriptRecord, error) {
	var rec TranscriptRecord
	err := s.Scan(&rec.JobID, &rec.RequestName, &rec.SourceType, &rec.GDriveURL, &rec.LocalPath,
		&rec.CreatedAt, &rec.Duration, &rec.WordCount, &rec.OverallWpm, &rec.FluencyScore, &rec.metricsJSON)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Close closes the database connection
func (mdb *MetadataDB) Close() error {
	return mdb.db.Close()
}
