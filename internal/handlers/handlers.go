// Package handlers implements the HTTP and WebSocket endpoints of the
// transcription service.
package handlers

import (
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/codebuildervaibhav/speech-insights/internal/queue"
)

// JobQueue accepts jobs for background processing.
type JobQueue interface {
	EnqueueJob(job *queue.Job) error
}

// StatusLookup reports the state of a job by ID.
type StatusLookup interface {
	Status(id string) (queue.JobStatus, bool)
}

// errorJSON writes the standard error envelope.
func errorJSON(c *fiber.Ctx, status int, msg, code string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
		"code":  code,
	})
}

// rejectJob removes the file of a job the queue refused and writes the
// error response.
func rejectJob(c *fiber.Ctx, job *queue.Job, err error) error {
	log.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to enqueue job")
	if job.FilePath != "" {
		os.Remove(job.FilePath)
	}
	msg, code := queueError(err)
	return errorJSON(c, fiber.StatusServiceUnavailable, msg, code)
}

func queueError(err error) (msg, code string) {
	if errors.Is(err, queue.ErrQueueFull) {
		return "Too many jobs queued, try again later", "ERR_QUEUE_FULL"
	}
	return "Server is shutting down", "ERR_UNAVAILABLE"
}
