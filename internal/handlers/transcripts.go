package handlers

import (
	"context"
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/codebuildervaibhav/speech-insights/internal/analytics"
	"github.com/codebuildervaibhav/speech-insights/internal/storage"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// TranscriptStore reads saved transcript metadata.
type TranscriptStore interface {
	ListTranscripts(ctx context.Context, limit int) ([]storage.TranscriptRecord, error)
	GetTranscript(ctx context.Context, jobID string) (*storage.TranscriptRecord, error)
	GetMetrics(ctx context.Context, jobID string) (*analytics.DeliveryMetrics, error)
}

// TranscriptsHandler serves saved transcripts and their metrics.
type TranscriptsHandler struct {
	store TranscriptStore
}

// NewTranscriptsHandler creates a transcripts handler
func NewTranscriptsHandler(store TranscriptStore) *TranscriptsHandler {
	return &TranscriptsHandler{store: store}
}

// List returns the most recent transcripts. ?limit= caps the count.
func (h *TranscriptsHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultListLimit)
	if limit <= 0 || limit > maxListLimit {
		return errorJSON(c, fiber.StatusBadRequest, "limit must be between 1 and 500", "ERR_INVALID_LIMIT")
	}

	transcripts, err := h.store.ListTranscripts(c.UserContext(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list transcripts")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to list transcripts", "ERR_DB")
	}
	return c.JSON(transcripts)
}

// Text returns the plain transcript text of a job.
func (h *TranscriptsHandler) Text(c *fiber.Ctx) error {
	transcript, err := h.store.GetTranscript(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.lookupError(c, err)
	}

	if transcript.LocalPath == "" {
		return errorJSON(c, fiber.StatusNotFound, "Transcript file path not found", "ERR_NOT_FOUND")
	}

	content, err := os.ReadFile(transcript.LocalPath)
	if err != nil {
		log.Error().Err(err).Str("path", transcript.LocalPath).Msg("Failed to read transcript file")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to read transcript file", "ERR_READ_FAILED")
	}
	return c.SendString(string(content))
}

// Metrics returns the delivery metrics stored for a job.
func (h *TranscriptsHandler) Metrics(c *fiber.Ctx) error {
	metrics, err := h.store.GetMetrics(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.lookupError(c, err)
	}
	if metrics == nil {
		return errorJSON(c, fiber.StatusNotFound, "No metrics stored for this transcript", "ERR_NO_METRICS")
	}
	return c.JSON(metrics)
}

func (h *TranscriptsHandler) lookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "Transcript not found", "ERR_NOT_FOUND")
	}
	log.Error().Err(err).Str("job_id", c.Params("id")).Msg("Failed to load transcript")
	return errorJSON(c, fiber.StatusInternalServerError, "Failed to load transcript", "ERR_DB")
}
