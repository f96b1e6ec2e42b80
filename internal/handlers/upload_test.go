package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebuildervaibhav/speech-insights/internal/queue"
	"github.com/codebuildervaibhav/speech-insights/internal/types"
)

func uploadRequest(t *testing.T, filename, name string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	if name != "" {
		require.NoError(t, w.WriteField("name", name))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func uploadApp(q JobQueue, dir string, maxMB int) *fiber.App {
	app := fiber.New()
	app.Post("/upload", NewUploadHandler(q, dir, maxMB).Handle)
	return app
}

func TestUpload_EnqueuesJob(t *testing.T) {
	dir := t.TempDir()
	q := &fakeQueue{}

	var got map[string]string
	resp := do(t, uploadApp(q, dir, 10), uploadRequest(t, "talk.MP3", "Keynote", []byte("audio")), &got)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "queued", got["status"])

	jobs := q.enqueued()
	require.Len(t, jobs, 1)
	job := jobs[0]
	assert.Equal(t, got["job_id"], job.ID)
	assert.Equal(t, "Keynote", job.RequestName)
	assert.Equal(t, types.SourceUpload, job.SourceType)
	assert.Equal(t, filepath.Join(dir, job.ID+".MP3"), job.FilePath)

	data, err := os.ReadFile(job.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "audio", string(data))
}

func TestUpload_DefaultName(t *testing.T) {
	q := &fakeQueue{}
	resp := do(t, uploadApp(q, t.TempDir(), 10), uploadRequest(t, "a.wav", "", []byte("x")), nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, q.enqueued(), 1)
	assert.Equal(t, "untitled", q.enqueued()[0].RequestName)
}

func TestUpload_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		maxMB    int
		code     string
	}{
		{"no file", "", 10, "ERR_NO_FILE"},
		{"bad format", "notes.txt", 10, "ERR_INVALID_FORMAT"},
		{"too large", "talk.mp3", 0, "ERR_FILE_TOO_LARGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQueue{}
			var got errorBody
			resp := do(t, uploadApp(q, t.TempDir(), tt.maxMB), uploadRequest(t, tt.filename, "n", []byte("audio")), &got)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.code, got.Code)
			assert.Empty(t, q.enqueued())
		})
	}
}

func TestUpload_QueueFull(t *testing.T) {
	dir := t.TempDir()
	q := &fakeQueue{err: queue.ErrQueueFull}

	var got errorBody
	resp := do(t, uploadApp(q, dir, 10), uploadRequest(t, "talk.mp3", "n", []byte("audio")), &got)

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "ERR_QUEUE_FULL", got.Code)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected upload is removed")
}
