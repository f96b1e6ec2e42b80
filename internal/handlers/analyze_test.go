package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebuildervaibhav/speech-insights/internal/analytics"
)

func analyzeApp(maxWords int) *fiber.App {
	app := fiber.New()
	app.Post("/analyze", NewAnalyzeHandler(nil, maxWords).Handle)
	return app
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAnalyze_ComputesMetrics(t *testing.T) {
	body := `{
		"text": "Um, we shipped it. It works.",
		"words": [
			{"start": 0, "end": 300, "text": "Um,"},
			{"start": 400, "end": 700, "text": "um", "confidence": 0.4},
			{"start": 800, "end": 1100, "text": "we"},
			{"start": 2500, "end": 2800, "text": "shipped", "speaker": "A"},
			{"start": 2900, "end": 3200, "text": "it"}
		]
	}`

	var got analytics.DeliveryMetrics
	resp := do(t, analyzeApp(0), postJSON("/analyze", body), &got)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, got.WordCount)
	assert.Equal(t, int64(3200), got.TotalDurationMs)
	assert.Equal(t, 1, got.PauseCount)
	assert.Equal(t, 1, got.FillerCount, `"Um," keeps its comma and is not a filler`)
	require.NotNil(t, got.SentenceStats)
	assert.Equal(t, 2, got.SentenceStats.Count)
	assert.Equal(t, int64(1200), got.TalkTimeBySpeakerMs["default"])
	assert.Equal(t, int64(300), got.TalkTimeBySpeakerMs["A"])
	require.NotNil(t, got.ConfidenceScore)
}

func TestAnalyze_EmptyTranscript(t *testing.T) {
	var got analytics.DeliveryMetrics
	resp := do(t, analyzeApp(0), postJSON("/analyze", `{"text": "", "words": []}`), &got)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, got.WordCount)
	assert.Nil(t, got.PaceTimeline)
}

func TestAnalyze_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		maxWords int
		status   int
		code     string
	}{
		{
			name:   "malformed body",
			body:   `{"words": [`,
			status: http.StatusBadRequest,
			code:   "ERR_INVALID_BODY",
		},
		{
			name:   "unsorted words",
			body:   `{"words": [{"start": 500, "end": 600, "text": "b"}, {"start": 100, "end": 200, "text": "a"}]}`,
			status: http.StatusBadRequest,
			code:   "ERR_UNSORTED_WORDS",
		},
		{
			name:   "word ends before start",
			body:   `{"words": [{"start": 500, "end": 400, "text": "a"}]}`,
			status: http.StatusBadRequest,
			code:   "ERR_INVALID_WORD",
		},
		{
			name:     "too many words",
			body:     `{"words": [{"start": 0, "end": 1, "text": "a"}, {"start": 2, "end": 3, "text": "b"}]}`,
			maxWords: 1,
			status:   http.StatusRequestEntityTooLarge,
			code:     "ERR_TOO_MANY_WORDS",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got errorBody
			resp := do(t, analyzeApp(tt.maxWords), postJSON("/analyze", tt.body), &got)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, got.Code)
			assert.NotEmpty(t, got.Error)
		})
	}
}
