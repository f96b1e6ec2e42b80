package queue

import (
	"time"

	"github.com/codebuildervaibhav/speech-insights/internal/types"
)

// Job represents a transcription job. Fields other than the identifying
// ones are owned by the worker pool; read them through WorkerPool.Status.
type Job struct {
	ID          string
	RequestName string
	SourceType  string
	FilePath    string
	Status      string
	Error       error
	Result      *types.TranscriptionResult
	CreatedAt   time.Time
	FinishedAt  time.Time
}

// NewJob creates a new job with default values
func NewJob(id, requestName, sourceType, filePath string) *Job {
	return &Job{
		ID:          id,
		RequestName: requestName,
		SourceType:  sourceType,
		FilePath:    filePath,
		Status:      types.StatusQueued,
		CreatedAt:   time.Now(),
	}
}

// JobStatus is a point-in-time copy of a job, safe to serialise.
type JobStatus struct {
	ID           string     `json:"job_id"`
	RequestName  string     `json:"request_name"`
	SourceType   string     `json:"source_type"`
	Status       string     `json:"status"`
	Error        string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	LocalPath    string     `json:"local_path,omitempty"`
	GDriveURL    string     `json:"gdrive_url,omitempty"`
	WordCount    int        `json:"word_count,omitempty"`
	OverallWpm   *int       `json:"overall_wpm,omitempty"`
	FluencyScore *int       `json:"fluency_score,omitempty"`
}

func (j *Job) snapshot() JobStatus {
	s := JobStatus{
		ID:          j.ID,
		RequestName: j.RequestName,
		SourceType:  j.SourceType,
		Status:      j.Status,
		CreatedAt:   j.CreatedAt,
	}
	if j.Error != nil {
		s.Error = j.Error.Error()
	}
	if !j.FinishedAt.IsZero() {
		t := j.FinishedAt
		s.FinishedAt = &t
	}
	if r := j.Result; r != nil {
		s.LocalPath = r.LocalPath
		s.GDriveURL = r.GDriveURL
		s.WordCount = r.WordCount
		if m := r.Metrics; m != nil {
			wpm, fluency := m.OverallWpm, m.FluencyScore
			s.OverallWpm = &wpm
			s.FluencyScore = &fluency
		}
	}
	return s
}

func (j *Job) finished() bool {
	return j.Status == types.StatusCompleted || j.Status == types.StatusFailed
}
