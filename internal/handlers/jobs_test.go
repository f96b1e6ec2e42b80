package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebuildervaibhav/speech-insights/internal/queue"
	"github.com/codebuildervaibhav/speech-insights/internal/types"
)

type staticLookup map[string]queue.JobStatus

func (s staticLookup) Status(id string) (queue.JobStatus, bool) {
	st, ok := s[id]
	return st, ok
}

func TestJobs_Get(t *testing.T) {
	queued := staticLookup{"a": {ID: "a", Status: types.StatusProcessing}}
	capturing := staticLookup{
		"a": {ID: "a", Status: StatusCapturing},
		"b": {ID: "b", Status: StatusCapturing},
	}
	app := fiber.New()
	app.Get("/jobs/:id", NewJobsHandler(queued, capturing).Get)

	var got queue.JobStatus
	resp := do(t, app, httptest.NewRequest(http.MethodGet, "/jobs/a", nil), &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, types.StatusProcessing, got.Status, "first source wins")

	resp = do(t, app, httptest.NewRequest(http.MethodGet, "/jobs/b", nil), &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, StatusCapturing, got.Status)

	var e errorBody
	resp = do(t, app, httptest.NewRequest(http.MethodGet, "/jobs/c", nil), &e)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ERR_NOT_FOUND", e.Code)
}
