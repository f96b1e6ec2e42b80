package cleanup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPruner struct {
	cutoffs []time.Time
}

func (p *recordingPruner) PruneFinished(cutoff time.Time) int {
	p.cutoffs = append(p.cutoffs, cutoff)
	return 1
}

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestRunOnce_RemovesOnlyOldFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 1, 23, 12, 0, 0, 0, time.UTC)

	oldFile := filepath.Join(dir, "old.wav")
	nestedOld := filepath.Join(dir, "whisper_x", "old.json")
	fresh := filepath.Join(dir, "fresh.wav")
	touch(t, oldFile, now.Add(-25*time.Hour))
	touch(t, nestedOld, now.Add(-48*time.Hour))
	touch(t, fresh, now.Add(-time.Hour))

	pruner := &recordingPruner{}
	s := NewScheduler(dir, 30, 24, pruner)
	s.now = func() time.Time { return now }

	s.RunOnce()

	assert.NoFileExists(t, oldFile)
	assert.NoFileExists(t, nestedOld)
	assert.FileExists(t, fresh)
	assert.DirExists(t, filepath.Join(dir, "whisper_x"))
	require.Len(t, pruner.cutoffs, 1)
	assert.Equal(t, now.Add(-24*time.Hour), pruner.cutoffs[0])
}

func TestRunOnce_MissingDir(t *testing.T) {
	s := NewScheduler(filepath.Join(t.TempDir(), "absent"), 30, 24, nil)
	assert.NotPanics(t, s.RunOnce)
}

func TestStartStop(t *testing.T) {
	pruner := &recordingPruner{}
	s := NewScheduler(t.TempDir(), 60, 24, pruner)

	s.Start()
	s.Stop()
	s.Stop()

	assert.Len(t, pruner.cutoffs, 1, "initial sweep only")
}

func TestEnsureTempDirExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureTempDirExists(dir))
	assert.DirExists(t, dir)
}
