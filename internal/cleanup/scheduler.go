package cleanup

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// JobPruner forgets finished jobs. The worker pool implements it.
type JobPruner interface {
	PruneFinished(cutoff time.Time) int
}

// Scheduler handles cleanup of temporary files and of finished jobs kept for
// status lookups.
type Scheduler struct {
	tempDir  string
	interval time.Duration
	maxAge   time.Duration
	pruner   JobPruner
	now      func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewScheduler creates a new cleanup scheduler. pruner may be nil.
func NewScheduler(tempDir string, intervalMinutes, maxAgeHours int, pruner JobPruner) *Scheduler {
	return &Scheduler{
		tempDir:  tempDir,
		interval: time.Duration(intervalMinutes) * time.Minute,
		maxAge:   time.Duration(maxAgeHours) * time.Hour,
		pruner:   pruner,
		now:      time.Now,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs one cleanup immediately and then one per interval.
func (s *Scheduler) Start() {
	log.Info().Msg("Running initial temp file cleanup")
	s.RunOnce()

	ticker := time.NewTicker(s.interval)
	go func() {
		defer close(s.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.RunOnce()
			case <-s.stopChan:
				return
			}
		}
	}()

	log.Info().
		Dur("interval", s.interval).
		Dur("max_age", s.maxAge).
		Msg("Cleanup scheduler started")
}

// Stop stops the cleanup scheduler and waits for a running sweep to end.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		<-s.done
		log.Info().Msg("Cleanup scheduler stopped")
	})
}

// RunOnce removes temp files older than the max age and prunes finished jobs
// older than the same age.
func (s *Scheduler) RunOnce() {
	s.cleanOldFiles()

	if s.pruner != nil {
		if n := s.pruner.PruneFinished(s.now().Add(-s.maxAge)); n > 0 {
			log.Info().Int("jobs", n).Msg("Pruned finished jobs")
		}
	}
}

// cleanOldFiles removes files older than maxAge from the temp directory
func (s *Scheduler) cleanOldFiles() {
	now := s.now()

	var deletedCount int
	var deletedSize int64

	err := filepath.WalkDir(s.tempDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil // skip what we can't read
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		age := now.Sub(info.ModTime())
		if age <= s.maxAge {
			return nil
		}

		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to delete old file")
			return nil
		}
		deletedCount++
		deletedSize += info.Size()
		log.Debug().
			Str("file", filepath.Base(path)).
			Dur("age", age.Round(time.Hour)).
			Int64("size_kb", info.Size()/1024).
			Msg("Deleted old temp file")
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("Error during cleanup")
	}

	if deletedCount > 0 {
		log.Info().
			Int("files", deletedCount).
			Float64("freed_mb", float64(deletedSize)/(1024*1024)).
			Msg("Cleanup complete")
	}
}

// EnsureTempDirExists creates the temp directory if it doesn't exist
func EnsureTempDirExists(tempDir string) error {
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return err
	}
	log.Info().Str("path", tempDir).Msg("Temp directory ready")
	return nil
}
