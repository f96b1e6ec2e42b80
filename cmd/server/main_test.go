package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codebuildervaibhav/speech-insights/internal/analytics"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(bytes.NewBufferString(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"text": "hello there.", "words": [
		{"start": 0, "end": 400, "text": "hello"},
		{"start": 500, "end": 900, "text": "there."}
	]}`)
	b := writeFile(t, dir, "b.json", `{"text": "", "words": []}`)

	out, err := run(t, "", "analyze", a, b)
	require.NoError(t, err)

	var reports []fileReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, a, reports[0].File)
	assert.Equal(t, 2, reports[0].Metrics.WordCount)
	assert.Equal(t, int64(900), reports[0].Metrics.TotalDurationMs)
	assert.Equal(t, b, reports[1].File)
	assert.Zero(t, reports[1].Metrics.WordCount)
}

func TestAnalyzeCommand_Stdin(t *testing.T) {
	out, err := run(t, `{"text": "ok", "words": [{"start": 0, "end": 300, "text": "ok"}]}`, "analyze", "--compact", "-")
	require.NoError(t, err)

	var reports []fileReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, 1, reports[0].Metrics.WordCount)
}

func TestAnalyzeCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	unsorted := writeFile(t, dir, "u.json", `{"words": [
		{"start": 500, "end": 600, "text": "b"},
		{"start": 0, "end": 100, "text": "a"}
	]}`)
	broken := writeFile(t, dir, "x.json", `{"words": [`)

	_, err := run(t, "", "analyze", unsorted)
	assert.ErrorIs(t, err, analytics.ErrUnsorted)

	_, err = run(t, "", "analyze", broken)
	assert.ErrorContains(t, err, "decode transcript")

	_, err = run(t, "", "analyze", filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = run(t, "", "analyze")
	assert.Error(t, err, "at least one file is required")
}

func TestServeFailsOnBadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", "server:\n  port: 99999\n")

	_, err := run(t, "", "--config", cfg)
	assert.ErrorContains(t, err, "server.port")

	_, err = run(t, "", "--config", filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}
