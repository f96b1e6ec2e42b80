// Package logging wires the global zerolog logger to stdout and to an
// in-memory buffer served by the /logs endpoint.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Buffer captures recent log lines in memory
type Buffer struct {
	mu    sync.Mutex
	lines []string
	limit int
}

// NewBuffer creates a buffer that keeps the last limit lines
func NewBuffer(limit int) *Buffer {
	if limit <= 0 {
		limit = 1000
	}
	return &Buffer{
		lines: make([]string, 0, limit),
		limit: limit,
	}
}

func (b *Buffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lines = append(b.lines, strings.TrimRight(string(p), "\n"))
	if len(b.lines) > b.limit {
		b.lines = b.lines[len(b.lines)-b.limit:]
	}
	return len(p), nil
}

// Lines returns a copy of the buffered lines, oldest first
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Setup points the global zerolog logger at a console writer on stdout and
// at buf, and returns the combined writer for other request loggers.
func Setup(level string, buf *Buffer) io.Writer {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	plain := zerolog.ConsoleWriter{Out: buf, NoColor: true, TimeFormat: time.RFC3339}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, plain)).With().Timestamp().Logger()

	return io.MultiWriter(os.Stdout, buf)
}
