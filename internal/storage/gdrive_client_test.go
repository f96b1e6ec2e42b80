package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/codebuildervaibhav/speech-insights/internal/analytics"
	"github.com/codebuildervaibhav/speech-insights/internal/types"
)

var nameField = regexp.MustCompile(`"name":\s*"([^"]*)"`)

// fakeDrive answers every list with no files and every create with a fresh id,
// recording the names of created files in order.
type fakeDrive struct {
	mu      sync.Mutex
	created []string
}

func (f *fakeDrive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodGet {
		fmt.Fprint(w, `{"files": []}`)
		return
	}

	body, _ := io.ReadAll(r.Body)
	name := ""
	if m := nameField.FindSubmatch(body); m != nil {
		name = string(m[1])
	}

	f.mu.Lock()
	f.created = append(f.created, name)
	id := len(f.created)
	f.mu.Unlock()

	json.NewEncoder(w).Encode(map[string]string{"id": fmt.Sprintf("file-%d", id)})
}

func TestDriveClient_Upload(t *testing.T) {
	fake := &fakeDrive{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	dc, err := newDriveClient(ctx, "Transcripts", "small",
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	dc.now = func() time.Time { return time.Date(2025, 1, 23, 14, 30, 22, 0, time.UTC) }

	url, err := dc.Upload(ctx, "weekly sync", &types.TranscriptionResult{
		JobID:   "job-1",
		Text:    "hello",
		Metrics: &analytics.DeliveryMetrics{WordCount: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Transcripts", "2025", "01", "23",
		"20250123_143022_weekly sync.txt",
		"20250123_143022_weekly sync_meta.json",
		"20250123_143022_weekly sync_metrics.json",
	}, fake.created)
	assert.Equal(t, "https://drive.google.com/file/d/file-6/view", url)
}

func TestEscapeQuery(t *testing.T) {
	assert.Equal(t, `O\'Brien`, escapeQuery("O'Brien"))
	assert.Equal(t, `a\\b`, escapeQuery(`a\b`))
}
