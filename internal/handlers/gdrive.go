package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codebuildervaibhav/speech-insights/internal/queue"
	"github.com/codebuildervaibhav/speech-insights/internal/types"
)

const gdriveDownloadURL = "https://drive.google.com/uc?export=download&id=%s"

// GDriveHandler handles Google Drive link processing
type GDriveHandler struct {
	jobs        JobQueue
	tempDir     string
	maxSizeMB   int
	client      *http.Client
	downloadURL string // format string taking the file ID
}

// NewGDriveHandler creates a new Google Drive handler
func NewGDriveHandler(jobs JobQueue, tempDir string, maxSizeMB int) *GDriveHandler {
	return &GDriveHandler{
		jobs:        jobs,
		tempDir:     tempDir,
		maxSizeMB:   maxSizeMB,
		client:      &http.Client{Timeout: 10 * time.Minute},
		downloadURL: gdriveDownloadURL,
	}
}

// GDriveRequest represents the request body
type GDriveRequest struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// Handle processes Google Drive link requests
func (h *GDriveHandler) Handle(c *fiber.Ctx) error {
	var req GDriveRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid request body", "ERR_INVALID_BODY")
	}

	if req.URL == "" {
		return errorJSON(c, fiber.StatusBadRequest, "URL is required", "ERR_NO_URL")
	}

	fileID := extractGDriveFileID(req.URL)
	if fileID == "" {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid Google Drive URL", "ERR_INVALID_URL")
	}

	if req.Name == "" {
		req.Name = "gdrive_file"
	}

	jobID := uuid.New().String()
	tempPath := filepath.Join(h.tempDir, jobID+".mp3")

	log.Info().Str("job_id", jobID).Str("file_id", fileID).Msg("Downloading from Google Drive")

	httpReq, err := http.NewRequestWithContext(c.UserContext(), http.MethodGet, fmt.Sprintf(h.downloadURL, fileID), nil)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "Invalid Google Drive URL", "ERR_INVALID_URL")
	}
	resp, err := h.client.Do(httpReq)
	if err != nil {
		log.Error().Err(err).Str("file_id", fileID).Msg("Failed to download from Google Drive")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to download file from Google Drive", "ERR_DOWNLOAD_FAILED")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errorJSON(c, fiber.StatusBadRequest, "File not accessible (may be private or doesn't exist)", "ERR_FILE_NOT_ACCESSIBLE")
	}

	tooLarge, err := h.saveBody(resp.Body, tempPath)
	if tooLarge {
		return errorJSON(c, fiber.StatusBadRequest, fmt.Sprintf("File too large (max %dMB)", h.maxSizeMB), "ERR_FILE_TOO_LARGE")
	}
	if err != nil {
		log.Error().Err(err).Str("path", tempPath).Msg("Failed to write downloaded file")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to write downloaded file", "ERR_WRITE_FAILED")
	}

	job := queue.NewJob(jobID, req.Name, types.SourceGDrive, tempPath)
	if err := h.jobs.EnqueueJob(job); err != nil {
		return rejectJob(c, job, err)
	}

	return c.JSON(fiber.Map{
		"job_id":  jobID,
		"status":  "queued",
		"message": "Google Drive file downloaded, processing started",
	})
}

// saveBody copies at most maxSizeMB from body to path. The file is removed
// when the copy fails or the limit is exceeded.
func (h *GDriveHandler) saveBody(body io.Reader, path string) (tooLarge bool, err error) {
	out, err := os.Create(path)
	if err != nil {
		return false, err
	}

	limit := int64(h.maxSizeMB) * 1024 * 1024
	n, err := io.Copy(out, io.LimitReader(body, limit+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > limit {
		tooLarge = true
	}
	if err != nil || tooLarge {
		os.Remove(path)
	}
	return tooLarge, err
}

var gdriveIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`), // https://drive.google.com/file/d/{ID}/view
	regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`),  // https://drive.google.com/open?id={ID}
	regexp.MustCompile(`^([a-zA-Z0-9_-]{25,40})$`), // bare ID
}

// extractGDriveFileID extracts the file ID from various Google Drive URL formats
func extractGDriveFileID(url string) string {
	for _, re := range gdriveIDPatterns {
		if matches := re.FindStringSubmatch(url); len(matches) > 1 {
			return matches[1]
		}
	}
	return ""
}
