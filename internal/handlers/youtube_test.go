package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebuildervaibhav/speech-insights/internal/types"
)

func stubYouTube(q JobQueue, dir string, captureErr error) *YouTubeHandler {
	h := NewYouTubeHandler(q, dir)
	h.capture = func(_ context.Context, _ string, out string) error {
		if captureErr != nil {
			return captureErr
		}
		return os.WriteFile(out, []byte("opus"), 0644)
	}
	h.title = func(context.Context, string) (string, error) { return "Quarterly Review", nil }
	return h
}

func TestYouTube_CapturesThenEnqueues(t *testing.T) {
	q := &fakeQueue{}
	h := stubYouTube(q, t.TempDir(), nil)
	app := fiber.New()
	app.Post("/youtube", h.Handle)

	var got map[string]string
	resp := do(t, app, postJSON("/youtube", `{"url": "https://youtu.be/abc"}`), &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "capturing", got["status"])

	h.Wait()

	jobs := q.enqueued()
	require.Len(t, jobs, 1)
	assert.Equal(t, got["job_id"], jobs[0].ID)
	assert.Equal(t, "Quarterly Review", jobs[0].RequestName)
	assert.Equal(t, types.SourceYouTube, jobs[0].SourceType)
	assert.FileExists(t, jobs[0].FilePath)

	_, ok := h.Status(got["job_id"])
	assert.False(t, ok, "enqueued jobs are reported by the queue")
}

func TestYouTube_KeepsGivenName(t *testing.T) {
	q := &fakeQueue{}
	h := stubYouTube(q, t.TempDir(), nil)
	app := fiber.New()
	app.Post("/youtube", h.Handle)

	do(t, app, postJSON("/youtube", `{"url": "https://youtu.be/abc", "name": "mine"}`), nil)
	h.Wait()

	require.Len(t, q.enqueued(), 1)
	assert.Equal(t, "mine", q.enqueued()[0].RequestName)
}

func TestYouTube_CaptureFailureIsReported(t *testing.T) {
	q := &fakeQueue{}
	h := stubYouTube(q, t.TempDir(), errors.New("yt-dlp: not found"))
	app := fiber.New()
	app.Post("/youtube", h.Handle)

	var got map[string]string
	do(t, app, postJSON("/youtube", `{"url": "https://youtu.be/abc"}`), &got)
	h.Wait()

	assert.Empty(t, q.enqueued())
	st, ok := h.Status(got["job_id"])
	require.True(t, ok)
	assert.Equal(t, types.StatusFailed, st.Status)
	assert.Contains(t, st.Error, "yt-dlp: not found")
	assert.Equal(t, "Quarterly Review", st.RequestName)
	assert.NotNil(t, st.FinishedAt)
}

func TestYouTube_RequiresURL(t *testing.T) {
	app := fiber.New()
	app.Post("/youtube", stubYouTube(&fakeQueue{}, t.TempDir(), nil).Handle)

	var got errorBody
	resp := do(t, app, postJSON("/youtube", `{"name": "x"}`), &got)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ERR_NO_URL", got.Code)
}
