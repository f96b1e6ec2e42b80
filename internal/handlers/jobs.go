package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// JobsHandler reports the progress of submitted jobs.
type JobsHandler struct {
	sources []StatusLookup
}

// NewJobsHandler creates a jobs handler that asks each source in turn.
func NewJobsHandler(sources ...StatusLookup) *JobsHandler {
	return &JobsHandler{sources: sources}
}

// Get returns the status of one job
func (h *JobsHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	for _, src := range h.sources {
		if st, ok := src.Status(id); ok {
			return c.JSON(st)
		}
	}
	return errorJSON(c, fiber.StatusNotFound, "Job not found", "ERR_NOT_FOUND")
}
