package types

import (
	"time"

	"github.com/codebuildervaibhav/speech-insights/internal/analytics"
)

// Job status constants
const (
	StatusQueued     = "QUEUED"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// Source type constants
const (
	SourceUpload  = "upload"
	SourceGDrive  = "gdrive"
	SourceYouTube = "youtube"
	SourceStream  = "stream"
)

// TranscriptionResult represents the output from Whisper plus the delivery
// metrics computed from its words
type TranscriptionResult struct {
	JobID       string
	Text        string
	Language    string
	Duration    float64
	Segments    []Segment
	Words       []analytics.Word
	Metrics     *analytics.DeliveryMetrics
	WordCount   int
	ProcessedAt time.Time
	LocalPath   string
	GDriveURL   string
}

// Segment represents a timestamped segment of transcription
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
