package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codebuildervaibhav/speech-insights/internal/observe"
	"github.com/codebuildervaibhav/speech-insights/internal/storage"
	"github.com/codebuildervaibhav/speech-insights/internal/transcription"
	"github.com/codebuildervaibhav/speech-insights/internal/types"
)

const uploadAttempts = 3

var (
	// ErrQueueFull is returned by EnqueueJob when the job buffer is full.
	ErrQueueFull = errors.New("job queue is full")

	// ErrStopped is returned by EnqueueJob after Stop.
	ErrStopped = errors.New("worker pool is stopped")
)

// Transcriber turns an audio file into a transcript with word timings.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*types.TranscriptionResult, error)
}

// Uploader copies a finished transcript to remote storage.
type Uploader interface {
	Upload(ctx context.Context, requestName string, result *types.TranscriptionResult) (string, error)
}

// NormalizeFunc converts an input file into the format the transcriber
// expects and returns the new path.
type NormalizeFunc func(ctx context.Context, inputPath, tempDir string) (string, error)

// PoolConfig configures a WorkerPool. Zero values fall back to defaults.
type PoolConfig struct {
	Workers   int
	QueueSize int
	TempDir   string

	// Diarize labels unlabelled words with alternating speakers when the
	// silence between them exceeds DiarizeGap.
	Diarize    bool
	DiarizeGap time.Duration

	Normalize NormalizeFunc
	Metrics   *observe.Metrics

	// Backoff is the wait before upload retry n (1-based).
	Backoff func(attempt int) time.Duration
}

// WorkerPool manages a pool of workers processing transcription jobs
type WorkerPool struct {
	cfg          PoolConfig
	jobQueue     chan *Job
	transcriber  Transcriber
	localStorage *storage.LocalStorage
	driveClient  Uploader
	db           *storage.MetadataDB

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	jobs    map[string]*Job
	stopped bool
}

// NewWorkerPool creates a new worker pool. driveClient and db may be nil.
func NewWorkerPool(
	cfg PoolConfig,
	transcriber Transcriber,
	localStorage *storage.LocalStorage,
	driveClient Uploader,
	db *storage.MetadataDB,
) *WorkerPool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.Normalize == nil {
		cfg.Normalize = transcription.NormalizeAudio
	}
	if cfg.Backoff == nil {
		cfg.Backoff = func(attempt int) time.Duration {
			return time.Duration(attempt*attempt) * time.Second
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		cfg:          cfg,
		jobQueue:     make(chan *Job, cfg.QueueSize),
		transcriber:  transcriber,
		localStorage: localStorage,
		driveClient:  driveClient,
		db:           db,
		ctx:          ctx,
		cancel:       cancel,
		jobs:         make(map[string]*Job),
	}
}

// Start initializes all workers
func (wp *WorkerPool) Start() {
	log.Info().Int("workers", wp.cfg.Workers).Int("queue_size", wp.cfg.QueueSize).Msg("Starting worker pool")
	for i := 0; i < wp.cfg.Workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop stops accepting jobs and waits for queued ones to finish. If ctx
// expires first, running jobs are cancelled and ctx's error is returned.
func (wp *WorkerPool) Stop(ctx context.Context) error {
	wp.mu.Lock()
	if !wp.stopped {
		wp.stopped = true
		close(wp.jobQueue)
	}
	wp.mu.Unlock()

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		wp.cancel()
		log.Info().Msg("Worker pool stopped")
		return nil
	case <-ctx.Done():
		wp.cancel()
		<-done
		return ctx.Err()
	}
}

// EnqueueJob registers a job and adds it to the queue
func (wp *WorkerPool) EnqueueJob(job *Job) error {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.stopped {
		return ErrStopped
	}

	job.Status = types.StatusQueued
	job.CreatedAt = time.Now()

	select {
	case wp.jobQueue <- job:
	default:
		return ErrQueueFull
	}
	wp.jobs[job.ID] = job

	log.Info().
		Str("job_id", job.ID).
		Str("source", job.SourceType).
		Str("name", job.RequestName).
		Msg("Job enqueued")
	return nil
}

// Status returns a snapshot of a known job.
func (wp *WorkerPool) Status(id string) (JobStatus, bool) {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	job, ok := wp.jobs[id]
	if !ok {
		return JobStatus{}, false
	}
	return job.snapshot(), true
}

// PruneFinished forgets completed and failed jobs that finished before
// cutoff and returns how many were removed.
func (wp *WorkerPool) PruneFinished(cutoff time.Time) int {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	var n int
	for id, job := range wp.jobs {
		if job.finished() && job.FinishedAt.Before(cutoff) {
			delete(wp.jobs, id)
			n++
		}
	}
	return n
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()
	logger := log.With().Int("worker", id).Logger()
	logger.Debug().Msg("Worker started")

	for job := range wp.jobQueue {
		wp.runJob(id, job)
	}
}

// runJob processes one job with panic recovery.
func (wp *WorkerPool) runJob(workerID int, job *Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Int("worker", workerID).
				Str("job_id", job.ID).
				Str("stack", string(debug.Stack())).
				Msgf("PANIC processing job: %v", r)
			wp.finish(job, types.StatusFailed, nil, fmt.Errorf("worker panic: %v", r))
			wp.cleanupTempFile(job.FilePath)
		}
	}()

	wp.processJob(workerID, job)
}

// processJob handles the complete transcription pipeline
func (wp *WorkerPool) processJob(workerID int, job *Job) {
	ctx := wp.ctx
	logger := log.With().Int("worker", workerID).Str("job_id", job.ID).Logger()
	logger.Info().Msg("Processing job")
	wp.setStatus(job, types.StatusProcessing)
	defer wp.cleanupTempFile(job.FilePath)

	// Step 1: Normalize audio
	normalizedPath, err := wp.cfg.Normalize(ctx, job.FilePath, wp.cfg.TempDir)
	if err != nil {
		logger.Error().Err(err).Msg("Audio normalization failed")
		wp.finish(job, types.StatusFailed, nil, fmt.Errorf("audio normalization failed: %w", err))
		return
	}
	defer wp.cleanupTempFile(normalizedPath)

	// Step 2: Transcribe with Whisper
	result, err := wp.transcriber.Transcribe(ctx, normalizedPath)
	if err != nil {
		logger.Error().Err(err).Msg("Transcription failed")
		wp.finish(job, types.StatusFailed, nil, fmt.Errorf("transcription failed: %w", err))
		return
	}

	result.JobID = job.ID
	result.WordCount = len(strings.Fields(result.Text))
	result.ProcessedAt = time.Now()

	// Step 3: Delivery analytics
	if wp.cfg.Diarize {
		result.Words = transcription.AssignSpeakers(result.Words, wp.cfg.DiarizeGap)
	}
	metrics := wp.cfg.Metrics.Analyze(ctx, result.Words, result.Text)
	result.Metrics = &metrics

	// Step 4: Save locally
	files, err := wp.localStorage.SaveTranscript(job.RequestName, result)
	if err != nil {
		logger.Error().Err(err).Msg("Local save failed")
		wp.finish(job, types.StatusFailed, nil, fmt.Errorf("local save failed: %w", err))
		return
	}
	result.LocalPath = files.TextPath

	// Step 5: Upload to Google Drive (with retry)
	if wp.driveClient != nil {
		result.GDriveURL = wp.upload(ctx, logger, job, result)
	}

	// Step 6: Save metadata to database
	if wp.db != nil {
		if err := wp.saveRecord(ctx, job, result); err != nil {
			logger.Error().Err(err).Msg("Database save failed")
		}
	}

	wp.finish(job, types.StatusCompleted, result, nil)
	logger.Info().
		Str("local", result.LocalPath).
		Str("gdrive", result.GDriveURL).
		Int("words", metrics.WordCount).
		Int("fluency", metrics.FluencyScore).
		Msg("Job completed successfully")
}

// upload tries the Drive upload up to three times. Failure is not fatal; the
// transcript stays available locally.
func (wp *WorkerPool) upload(ctx context.Context, logger zerolog.Logger, job *Job, result *types.TranscriptionResult) string {
	var err error
	for attempt := 1; attempt <= uploadAttempts; attempt++ {
		var url string
		url, err = wp.driveClient.Upload(ctx, job.RequestName, result)
		if err == nil {
			return url
		}
		logger.Warn().Err(err).Int("attempt", attempt).Msgf("Google Drive upload attempt %d/%d failed", attempt, uploadAttempts)
		if attempt == uploadAttempts {
			break
		}

		select {
		case <-time.After(wp.cfg.Backoff(attempt)):
		case <-ctx.Done():
			logger.Warn().Err(ctx.Err()).Msg("Google Drive upload abandoned")
			return ""
		}
	}
	logger.Warn().Err(err).Msg("Google Drive upload failed, continuing with local save only")
	return ""
}

func (wp *WorkerPool) saveRecord(ctx context.Context, job *Job, result *types.TranscriptionResult) error {
	rec, err := storage.NewTranscriptRecord(job.ID, job.RequestName, job.SourceType, result.Duration, result.Metrics)
	if err != nil {
		return err
	}
	rec.GDriveURL = result.GDriveURL
	rec.LocalPath = result.LocalPath
	if rec.WordCount == 0 {
		rec.WordCount = result.WordCount
	}
	return wp.db.SaveTranscript(ctx, rec)
}

func (wp *WorkerPool) setStatus(job *Job, status string) {
	wp.mu.Lock()
	job.Status = status
	wp.mu.Unlock()
}

func (wp *WorkerPool) finish(job *Job, status string, result *types.TranscriptionResult, err error) {
	wp.mu.Lock()
	job.Status = status
	job.Error = err
	job.Result = result
	job.FinishedAt = time.Now()
	elapsed := job.FinishedAt.Sub(job.CreatedAt)
	wp.mu.Unlock()

	wp.cfg.Metrics.RecordJob(context.Background(), job.SourceType, status, elapsed)
}

// cleanupTempFile removes a temporary file
func (wp *WorkerPool) cleanupTempFile(filePath string) {
	if filePath == "" {
		return
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", filePath).Msg("Failed to cleanup temp file")
	}
}
