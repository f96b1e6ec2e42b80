package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/speech-insights/internal/analytics"
	"github.com/codebuildervaibhav/speech-insights/internal/observe"
)

// AnalyzeRequest is a word-level transcript submitted for synchronous
// analysis.
type AnalyzeRequest struct {
	Text  string           `json:"text"`
	Words []analytics.Word `json:"words"`
}

// AnalyzeHandler computes delivery metrics for a transcript the caller
// already has, bypassing the transcription queue.
type AnalyzeHandler struct {
	metrics  *observe.Metrics
	maxWords int
}

// NewAnalyzeHandler creates an analyze handler. metrics may be nil.
func NewAnalyzeHandler(metrics *observe.Metrics, maxWords int) *AnalyzeHandler {
	return &AnalyzeHandler{
		metrics:  metrics,
		maxWords: maxWords,
	}
}

// Handle runs the analytics engine on the request body
func (h *AnalyzeHandler) Handle(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		h.metrics.RecordAnalyzeRequest(ctx, "invalid")
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body", "ERR_INVALID_BODY")
	}

	if h.maxWords > 0 && len(req.Words) > h.maxWords {
		h.metrics.RecordAnalyzeRequest(ctx, "too_large")
		return errorJSON(c, fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("Too many words (max %d)", h.maxWords), "ERR_TOO_MANY_WORDS")
	}

	if err := analytics.CheckOrder(req.Words); err != nil {
		h.metrics.RecordAnalyzeRequest(ctx, "invalid")
		code := "ERR_INVALID_WORD"
		if errors.Is(err, analytics.ErrUnsorted) {
			code = "ERR_UNSORTED_WORDS"
		}
		return errorJSON(c, fiber.StatusBadRequest, err.Error(), code)
	}

	result := h.metrics.Analyze(ctx, req.Words, req.Text)
	h.metrics.RecordAnalyzeRequest(ctx, "ok")
	return c.JSON(result)
}
