package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codebuildervaibhav/speech-insights/internal/types"
)

const maxFilenameLen = 100

// LocalStorage handles saving transcripts to the local filesystem
type LocalStorage struct {
	outputDir string
	modelName string
	now       func() time.Time
}

// NewLocalStorage creates a new local storage handler
func NewLocalStorage(outputDir, modelName string) *LocalStorage {
	return &LocalStorage{
		outputDir: outputDir,
		modelName: modelName,
		now:       time.Now,
	}
}

// SavedFiles lists the files written for one transcript.
type SavedFiles struct {
	TextPath    string
	MetaPath    string
	MetricsPath string // empty when the result carried no metrics
}

// SaveTranscript saves the transcript, its metadata and its delivery metrics
// under a dated directory: outputs/2025/01/23/20250123_143022_name.txt
func (ls *LocalStorage) SaveTranscript(requestName string, result *types.TranscriptionResult) (SavedFiles, error) {
	now := ls.now()
	dateDir := filepath.Join(ls.outputDir,
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()))

	if err := os.MkdirAll(dateDir, 0755); err != nil {
		return SavedFiles{}, fmt.Errorf("failed to create date directory: %w", err)
	}

	base := filepath.Join(dateDir, fmt.Sprintf("%s_%s", now.Format("20060102_150405"), sanitizeFilename(requestName)))
	files := SavedFiles{
		TextPath: base + ".txt",
		MetaPath: base + "_meta.json",
	}

	if err := os.WriteFile(files.TextPath, []byte(result.Text), 0644); err != nil {
		return SavedFiles{}, fmt.Errorf("failed to save transcript: %w", err)
	}

	meta := TranscriptMeta(requestName, ls.modelName, files.TextPath, result)
	if err := writeJSON(files.MetaPath, meta); err != nil {
		return SavedFiles{}, fmt.Errorf("failed to save metadata: %w", err)
	}

	if result.Metrics != nil {
		files.MetricsPath = base + "_metrics.json"
		if err := writeJSON(files.MetricsPath, result.Metrics); err != nil {
			return SavedFiles{}, fmt.Errorf("failed to save metrics: %w", err)
		}
	}

	log.Debug().Str("job_id", result.JobID).Str("path", files.TextPath).Msg("Transcript saved locally")
	return files, nil
}

// TranscriptMeta is the sidecar metadata document stored next to a transcript,
// locally and on Drive.
func TranscriptMeta(requestName, modelName, localPath string, result *types.TranscriptionResult) map[string]any {
	meta := map[string]any{
		"job_id":           result.JobID,
		"request_name":     requestName,
		"duration_seconds": result.Duration,
		"word_count":       result.WordCount,
		"model_used":       "whisper-" + modelName,
		"language":         result.Language,
		"created_at":       result.ProcessedAt,
		"segments":         result.Segments,
		"local_path":       localPath,
		"gdrive_url":       result.GDriveURL,
	}
	if m := result.Metrics; m != nil {
		meta["overall_wpm"] = m.OverallWpm
		meta["fluency_score"] = m.FluencyScore
	}
	return meta
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

var filenameReplacer = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_",
)

// sanitizeFilename replaces characters that are invalid in file names and
// limits the length.
func sanitizeFilename(name string) string {
	result := strings.TrimSpace(filenameReplacer.Replace(name))
	if result == "" || result == "." || result == ".." {
		result = "transcript"
	}
	if len(result) > maxFilenameLen {
		result = result[:maxFilenameLen]
	}
	return result
}
