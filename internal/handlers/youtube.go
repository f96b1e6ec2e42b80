package handlers

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codebuildervaibhav/speech-insights/internal/queue"
	"github.com/codebuildervaibhav/speech-insights/internal/types"
)

// StatusCapturing marks a YouTube job whose audio is still downloading.
const StatusCapturing = "CAPTURING"

const captureTimeout = 30 * time.Minute

// YouTubeHandler handles YouTube video audio capture
type YouTubeHandler struct {
	jobs    JobQueue
	tempDir string

	// capture downloads the audio of url to outputPath.
	capture func(ctx context.Context, url, outputPath string) error
	// title looks up the video title, used when the request has no name.
	title func(ctx context.Context, url string) (string, error)

	mu       sync.Mutex
	captures map[string]queue.JobStatus
	wg       sync.WaitGroup
}

// NewYouTubeHandler creates a new YouTube handler
func NewYouTubeHandler(jobs JobQueue, tempDir string) *YouTubeHandler {
	return &YouTubeHandler{
		jobs:     jobs,
		tempDir:  tempDir,
		capture:  captureWithYtDlp,
		title:    pageTitle,
		captures: make(map[string]queue.JobStatus),
	}
}

// YouTubeRequest represents the request body
type YouTubeRequest struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Handle processes YouTube video requests
func (h *YouTubeHandler) Handle(c *fiber.Ctx) error {
	var req YouTubeRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body", "ERR_INVALID_BODY")
	}

	if req.URL == "" {
		return errorJSON(c, fiber.StatusBadRequest, "URL is required", "ERR_NO_URL")
	}

	jobID := uuid.New().String()
	tempPath := filepath.Join(h.tempDir, jobID+".opus")

	h.setCapture(queue.JobStatus{
		ID:          jobID,
		RequestName: req.Name,
		SourceType:  types.SourceYouTube,
		Status:      StatusCapturing,
		CreatedAt:   time.Now(),
	})

	// Capture runs in the background; long videos take minutes
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.captureAndEnqueue(jobID, req, tempPath)
	}()

	return c.JSON(fiber.Map{
		"job_id":  jobID,
		"status":  "capturing",
		"message": "YouTube audio capture started (this may take a few minutes for long videos)",
	})
}

func (h *YouTubeHandler) captureAndEnqueue(jobID string, req YouTubeRequest, tempPath string) {
	ctx, cancel := context.WithTimeout(context.Background(), captureTimeout)
	defer cancel()

	logger := log.With().Str("job_id", jobID).Str("url", req.URL).Logger()

	name := req.Name
	if name == "" {
		title, err := h.title(ctx, req.URL)
		if err != nil || title == "" {
			logger.Debug().Err(err).Msg("No video title, using default name")
			title = "youtube_video"
		}
		name = title
	}

	if err := h.capture(ctx, req.URL, tempPath); err != nil {
		logger.Error().Err(err).Msg("Failed to capture YouTube audio")
		h.failCapture(jobID, name, fmt.Errorf("audio capture failed: %w", err))
		return
	}

	job := queue.NewJob(jobID, name, types.SourceYouTube, tempPath)
	if err := h.jobs.EnqueueJob(job); err != nil {
		logger.Error().Err(err).Msg("Failed to enqueue captured audio")
		h.failCapture(jobID, name, err)
		return
	}

	// the queue reports the job from here on
	h.mu.Lock()
	delete(h.captures, jobID)
	h.mu.Unlock()
}

// Status reports jobs that are still capturing or whose capture failed.
func (h *YouTubeHandler) Status(id string) (queue.JobStatus, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.captures[id]
	return st, ok
}

// Wait blocks until all background captures have finished.
func (h *YouTubeHandler) Wait() {
	h.wg.Wait()
}

func (h *YouTubeHandler) setCapture(st queue.JobStatus) {
	h.mu.Lock()
	h.captures[st.ID] = st
	h.mu.Unlock()
}

func (h *YouTubeHandler) failCapture(jobID, name string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	st := h.captures[jobID]
	now := time.Now()
	st.RequestName = name
	st.Status = types.StatusFailed
	st.Error = err.Error()
	st.FinishedAt = &now
	h.captures[jobID] = st
}

// pageTitle opens the video page in headless Chrome and reads its title.
func pageTitle(ctx context.Context, url string) (string, error) {
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, time.Minute)
	defer cancel()

	var title string
	err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Evaluate(`(document.querySelector('meta[name="title"]') || {}).content || document.title`,
			&title, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
				return p.WithReturnByValue(true)
			}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to read YouTube page: %w", err)
	}
	return strings.TrimSpace(strings.TrimSuffix(title, " - YouTube")), nil
}

// captureWithYtDlp uses yt-dlp to download YouTube audio. Requires yt-dlp on
// PATH (pip install yt-dlp).
func captureWithYtDlp(ctx context.Context, url, outputPath string) error {
	log.Info().Str("url", url).Msg("Using yt-dlp to download")

	cmd := exec.CommandContext(ctx, "yt-dlp",
		"-x",                     // Extract audio
		"--audio-format", "opus", // Opus format
		"-o", outputPath,         // Output path
		url,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("yt-dlp failed: %w\nOutput: %s", err, string(output))
	}

	log.Info().Str("path", outputPath).Msg("YouTube audio downloaded successfully")
	return nil
}
