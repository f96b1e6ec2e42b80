package handlers

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codebuildervaibhav/speech-insights/internal/queue"
	"github.com/codebuildervaibhav/speech-insights/internal/types"
)

const maxStreamNameLen = 200

// StreamHandler handles WebSocket audio streaming. Clients send an optional
// text frame with the recording name, binary audio frames, then "END".
type StreamHandler struct {
	jobs      JobQueue
	tempDir   string
	maxSizeMB int
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(jobs JobQueue, tempDir string, maxSizeMB int) *StreamHandler {
	return &StreamHandler{
		jobs:      jobs,
		tempDir:   tempDir,
		maxSizeMB: maxSizeMB,
	}
}

// messageConn is the part of a WebSocket connection the handler uses.
type messageConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
}

type streamReply struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Code   string `json:"code,omitempty"`
}

// Handle processes WebSocket connections
func (h *StreamHandler) Handle(c *websocket.Conn) {
	defer c.Close()
	h.serve(c)
}

func (h *StreamHandler) serve(c messageConn) {
	var (
		buffer      bytes.Buffer
		requestName string
		jobID       = uuid.New().String()
		maxBytes    = h.maxSizeMB * 1024 * 1024
	)
	logger := log.With().Str("job_id", jobID).Logger()
	logger.Info().Msg("WebSocket connection established")

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			logger.Debug().Err(err).Msg("WebSocket read ended")
			break
		}

		if messageType == websocket.TextMessage {
			msg := string(message)
			if msg == "END" {
				logger.Info().Msg("Received END signal, processing stream")
				break
			}
			if len(msg) > 0 && len(msg) < maxStreamNameLen {
				requestName = msg
				logger.Debug().Str("name", requestName).Msg("Stream name set")
			}
			continue
		}

		if messageType == websocket.BinaryMessage {
			if buffer.Len()+len(message) > maxBytes {
				h.reply(c, streamReply{JobID: jobID, Status: types.StatusFailed, Error: "Stream too large", Code: "ERR_FILE_TOO_LARGE"})
				return
			}
			buffer.Write(message)
		}
	}

	if buffer.Len() == 0 {
		logger.Info().Msg("No audio data received in stream")
		return
	}

	if requestName == "" {
		requestName = "stream_recording"
	}

	tempPath := filepath.Join(h.tempDir, jobID+".webm")
	if err := os.WriteFile(tempPath, buffer.Bytes(), 0644); err != nil {
		logger.Error().Err(err).Msg("Failed to save stream buffer")
		h.reply(c, streamReply{JobID: jobID, Status: types.StatusFailed, Error: "Failed to save stream", Code: "ERR_SAVE_FAILED"})
		return
	}
	logger.Info().Str("path", tempPath).Int("bytes", buffer.Len()).Msg("Stream saved")

	job := queue.NewJob(jobID, requestName, types.SourceStream, tempPath)
	if err := h.jobs.EnqueueJob(job); err != nil {
		logger.Error().Err(err).Msg("Failed to enqueue stream")
		os.Remove(tempPath)
		msg, code := queueError(err)
		h.reply(c, streamReply{JobID: jobID, Status: types.StatusFailed, Error: msg, Code: code})
		return
	}

	h.reply(c, streamReply{JobID: jobID, Status: "queued"})
}

func (h *StreamHandler) reply(c messageConn, r streamReply) {
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Debug().Err(err).Str("job_id", r.JobID).Msg("Failed to send stream reply")
	}
}
